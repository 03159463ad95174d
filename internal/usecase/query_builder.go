package usecase

import (
	"regexp"
	"strings"

	"github.com/framecart/backend/internal/domain"
)

// fallbackQuery is used when an item carries no usable attributes at all.
const fallbackQuery = "clothing"

// descriptionWordLimit caps how many description words feed the query.
const descriptionWordLimit = 3

var alphabeticRegex = regexp.MustCompile(`^[a-zA-Z]+$`)

// BuildQuery turns one consolidated item into a normalized catalog search
// query: lowercase tokens, deduplicated case-insensitively with first
// occurrence preserved, joined by single spaces. Brand text is wrapped in
// double quotes to force phrase matching on multi-word brand names.
func BuildQuery(item domain.ConsolidatedItem) string {
	return buildQuery(item, item.BrandText)
}

// BuildRelaxedQuery is BuildQuery with the brand dropped. Used only as a
// fallback after a branded search comes back empty.
func BuildRelaxedQuery(item domain.ConsolidatedItem) string {
	return buildQuery(item, "")
}

func buildQuery(item domain.ConsolidatedItem, brandText string) string {
	var tokens []string
	seen := make(map[string]bool)

	add := func(token string) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || seen[token] {
			return
		}
		seen[token] = true
		tokens = append(tokens, token)
	}

	add(item.Type)

	if brand := strings.Trim(strings.TrimSpace(brandText), `"'`); brand != "" {
		add(`"` + strings.ToLower(brand) + `"`)
	}

	add(item.Color)
	add(item.Pattern)
	add(item.Material)

	for _, word := range descriptionWords(item.Description) {
		add(word)
	}

	if len(tokens) == 0 {
		if itemType := strings.TrimSpace(item.Type); itemType != "" {
			return strings.ToLower(itemType)
		}
		return fallbackQuery
	}

	return strings.Join(tokens, " ")
}

// descriptionWords returns the first few purely-alphabetic words of a
// free-form description, lowercased. Numbers and punctuation-bearing words
// add noise upstream, so they are skipped rather than cleaned.
func descriptionWords(description string) []string {
	var words []string
	for _, word := range strings.Fields(description) {
		if !alphabeticRegex.MatchString(word) {
			continue
		}
		words = append(words, strings.ToLower(word))
		if len(words) == descriptionWordLimit {
			break
		}
	}
	return words
}
