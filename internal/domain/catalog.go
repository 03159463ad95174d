package domain

import (
	"strings"
	"time"
)

// Money is a Storefront price. Shopify sends amounts as decimal strings,
// so Amount uses the ",string" codec while staying numeric for comparisons.
type Money struct {
	Amount       float64 `json:"amount,string"`
	CurrencyCode string  `json:"currencyCode"`
}

// SelectedOption is one variant option pair, order preserved as returned.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable variant of a catalog product.
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Price            Money            `json:"price"`
}

// CatalogResult is one product returned by the external catalog, carried
// verbatim apart from the derived URL and display price.
type CatalogResult struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	URL         string    `json:"url,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	ProductType string    `json:"productType,omitempty"`
	Price       *Money    `json:"price,omitempty"`
	Image       string    `json:"image,omitempty"`
	ImageAlt    string    `json:"imageAlt,omitempty"`
	Variants    []Variant `json:"variants"`
}

// MatchedItem pairs one consolidated item with its catalog search outcome.
// Error is set when the upstream call for this item failed; Results is
// never nil so the response shape stays stable.
type MatchedItem struct {
	ItemIndex int              `json:"item_index"`
	Item      ConsolidatedItem `json:"item"`
	Query     string           `json:"query"`
	Results   []CatalogResult  `json:"results"`
	Error     string           `json:"error,omitempty"`
}

// CartLine is one line item for a cart mutation.
type CartLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the outcome of a successful cart mutation.
type Cart struct {
	CartID      string `json:"cart_id"`
	CheckoutURL string `json:"checkout_url"`
}

// DefaultAPIVersion is the Storefront API version used when none is configured.
const DefaultAPIVersion = "2024-07"

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 20 * time.Second

// StoreConfig identifies the catalog tenant for a request. It is built once
// (or per request for overrides), passed by value, and never mutated.
type StoreConfig struct {
	Domain      string        `json:"domain"`
	AccessToken string        `json:"access_token"`
	APIVersion  string        `json:"api_version"`
	Timeout     time.Duration `json:"-"`
}

// Normalized returns a copy with the domain stripped to a bare host and
// defaults applied for the API version and timeout.
func (s StoreConfig) Normalized() StoreConfig {
	domain := strings.TrimSpace(s.Domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	s.Domain = domain

	if s.APIVersion == "" {
		s.APIVersion = DefaultAPIVersion
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}

// Validate reports a configuration error for a missing domain or token.
// Surfaced before the first request is attempted.
func (s StoreConfig) Validate() error {
	if s.Domain == "" {
		return &ConfigurationError{Field: "domain", Reason: "store domain is required"}
	}
	if strings.ContainsAny(s.Domain, "/ ") {
		return &ConfigurationError{Field: "domain", Reason: "store domain must be a bare host"}
	}
	if s.AccessToken == "" {
		return &ConfigurationError{Field: "access_token", Reason: "storefront access token is required"}
	}
	return nil
}
