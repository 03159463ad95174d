package usecase

import (
	"sort"
	"strings"

	"github.com/framecart/backend/internal/domain"
)

// patternNone is the vision model's sentinel for "no discernible pattern".
// A later detection with a real pattern upgrades it during the fold.
const patternNone = "none"

// itemGroup accumulates every detection that shares one identity key.
type itemGroup struct {
	item         domain.ConsolidatedItem
	descriptions []string
	confidences  []float64
	frames       []int
}

// Consolidate merges noisy per-frame detections into one canonical record
// per physical item. Items are keyed by (type, lowercase color); every
// input detection's confidence and frame reference is folded into exactly
// one group. The result is ranked by average confidence, ties broken by
// the number of distinct frames the item appeared in.
func Consolidate(detections []domain.RawDetection) []domain.ConsolidatedItem {
	if len(detections) == 0 {
		return nil
	}

	groups := make(map[string]*itemGroup)
	var order []string

	for _, d := range detections {
		key := groupKey(d)

		group, exists := groups[key]
		if !exists {
			group = &itemGroup{
				item: domain.ConsolidatedItem{
					Type:      d.Type,
					Color:     d.Color,
					Pattern:   d.Pattern,
					Material:  d.Material,
					BrandText: d.BrandText,
				},
			}
			groups[key] = group
			order = append(order, key)
		} else {
			// Keep the first non-empty brand; never overwrite once set.
			if group.item.BrandText == "" && d.BrandText != "" {
				group.item.BrandText = d.BrandText
			}
			// Upgrade the pattern sentinel if a later frame saw a real one.
			if group.item.Pattern == patternNone && d.Pattern != "" && d.Pattern != patternNone {
				group.item.Pattern = d.Pattern
			}
		}

		group.descriptions = append(group.descriptions, d.Description)
		group.confidences = append(group.confidences, d.Confidence)
		group.frames = append(group.frames, d.FrameNumber)
	}

	items := make([]domain.ConsolidatedItem, 0, len(order))
	for _, key := range order {
		items = append(items, finalizeGroup(groups[key]))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AverageConfidence != items[j].AverageConfidence {
			return items[i].AverageConfidence > items[j].AverageConfidence
		}
		return items[i].FrameCount > items[j].FrameCount
	})

	return items
}

// groupKey builds the identity key for a detection. Missing type or color
// collapses to the literal "unknown" so partial observations still group.
func groupKey(d domain.RawDetection) string {
	itemType := d.Type
	if itemType == "" {
		itemType = "unknown"
	}
	color := strings.ToLower(d.Color)
	if color == "" {
		color = "unknown"
	}
	return itemType + "_" + color
}

// finalizeGroup derives the aggregate fields from a group's accumulators.
func finalizeGroup(g *itemGroup) domain.ConsolidatedItem {
	item := g.item

	item.Description = longestString(g.descriptions)
	item.AverageConfidence = mean(g.confidences)
	item.FramesSeen = sortedDistinct(g.frames)
	item.FrameCount = len(item.FramesSeen)
	item.AllDescriptions = distinctStrings(g.descriptions)

	return item
}

// longestString returns the longest entry, first occurrence winning ties.
func longestString(values []string) string {
	best := ""
	for _, v := range values {
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedDistinct(values []int) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// distinctStrings de-duplicates preserving first occurrence. Empty
// descriptions are kept out of the set but still counted toward the fold.
func distinctStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
