package shopify

import (
	"encoding/json"

	"github.com/framecart/backend/internal/domain"
)

// GraphQL documents for the Storefront API. Variables ride alongside the
// document in a single POST body; the API version lives in the URL.
const (
	productSearchQuery = `query productSearch($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        id
        title
        handle
        vendor
        productType
        onlineStoreUrl
        featuredImage {
          url
          altText
        }
        images(first: 1) {
          edges {
            node {
              url
              altText
            }
          }
        }
        variants(first: 10) {
          edges {
            node {
              id
              title
              availableForSale
              selectedOptions {
                name
                value
              }
              price {
                amount
                currencyCode
              }
            }
          }
        }
      }
    }
  }
}`

	cartCreateMutation = `mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
    }
    userErrors {
      field
      message
    }
  }
}`
)

// graphqlRequest is the request body for every Storefront call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlEnvelope is the top-level Storefront response. A populated Errors
// field is a hard failure even on HTTP 200.
type graphqlEnvelope struct {
	Data   json.RawMessage       `json:"data"`
	Errors []domain.GraphQLError `json:"errors"`
}

// Wire shapes for the product search response.

type imageNode struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type variantNode struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	AvailableForSale bool                    `json:"availableForSale"`
	SelectedOptions  []domain.SelectedOption `json:"selectedOptions"`
	Price            *domain.Money           `json:"price"`
}

type productNode struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Handle         string     `json:"handle"`
	Vendor         string     `json:"vendor"`
	ProductType    string     `json:"productType"`
	OnlineStoreURL string     `json:"onlineStoreUrl"`
	FeaturedImage  *imageNode `json:"featuredImage"`
	Images         struct {
		Edges []struct {
			Node imageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type productSearchData struct {
	Products struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// Wire shapes for the cart mutation response.

type cartCreateData struct {
	CartCreate struct {
		Cart *struct {
			ID          string `json:"id"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"cart"`
		UserErrors []domain.CartUserError `json:"userErrors"`
	} `json:"cartCreate"`
}
