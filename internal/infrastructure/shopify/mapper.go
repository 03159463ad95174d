package shopify

import (
	"fmt"

	"github.com/framecart/backend/internal/domain"
)

// mapProducts converts product search edges into domain catalog results.
func mapProducts(data productSearchData, storeDomain string) []domain.CatalogResult {
	results := make([]domain.CatalogResult, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		results = append(results, mapProduct(edge.Node, storeDomain))
	}
	return results
}

func mapProduct(node productNode, storeDomain string) domain.CatalogResult {
	result := domain.CatalogResult{
		ID:          node.ID,
		Title:       node.Title,
		Handle:      node.Handle,
		Vendor:      node.Vendor,
		ProductType: node.ProductType,
		URL:         productURL(node, storeDomain),
		Variants:    mapVariants(node.Variants.Edges),
	}

	// Prefer the catalog-designated featured image; fall back to the first
	// generic image when the product has none.
	if node.FeaturedImage != nil && node.FeaturedImage.URL != "" {
		result.Image = node.FeaturedImage.URL
		result.ImageAlt = node.FeaturedImage.AltText
	} else if len(node.Images.Edges) > 0 {
		result.Image = node.Images.Edges[0].Node.URL
		result.ImageAlt = node.Images.Edges[0].Node.AltText
	}

	// Display price comes from the first usable variant. A product with no
	// variants carries no price at all.
	if len(result.Variants) > 0 {
		price := result.Variants[0].Price
		result.Price = &price
	}

	return result
}

// mapVariants keeps upstream order, skipping any variant missing an id or
// a price.
func mapVariants(edges []struct {
	Node variantNode `json:"node"`
}) []domain.Variant {
	variants := make([]domain.Variant, 0, len(edges))
	for _, edge := range edges {
		node := edge.Node
		if node.ID == "" || node.Price == nil {
			continue
		}
		variants = append(variants, domain.Variant{
			ID:               node.ID,
			Title:            node.Title,
			AvailableForSale: node.AvailableForSale,
			SelectedOptions:  node.SelectedOptions,
			Price:            *node.Price,
		})
	}
	return variants
}

// productURL prefers the upstream-provided storefront URL, synthesizing
// one from the handle otherwise.
func productURL(node productNode, storeDomain string) string {
	if node.OnlineStoreURL != "" {
		return node.OnlineStoreURL
	}
	if node.Handle == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/products/%s", storeDomain, node.Handle)
}
