package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/framecart/backend/internal/domain"
)

// Defaults for a batch match request.
const (
	DefaultLimitPerItem = 5
	DefaultMaxItems     = 6
	maxLimitPerItem     = 50
)

// MatchOptions bound one batch match request.
type MatchOptions struct {
	LimitPerItem int
	MaxItems     int
	PriceCap     *float64 // drop results above this; nil disables the filter
}

func (o MatchOptions) withDefaults() MatchOptions {
	if o.LimitPerItem <= 0 {
		o.LimitPerItem = DefaultLimitPerItem
	}
	if o.LimitPerItem > maxLimitPerItem {
		o.LimitPerItem = maxLimitPerItem
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	return o
}

// MatchService drives catalog matching for a batch of consolidated items.
// It is the only component with cross-item state; the query builder and
// catalog client stay stateless per call.
type MatchService struct {
	catalog domain.CatalogClient
	workers int
	log     zerolog.Logger
}

// NewMatchService creates a match service. workers <= 1 keeps the strict
// sequential per-item flow; higher values fan out across items while
// preserving output order by item index.
func NewMatchService(catalog domain.CatalogClient, workers int, log zerolog.Logger) *MatchService {
	if workers < 1 {
		workers = 1
	}
	return &MatchService{catalog: catalog, workers: workers, log: log}
}

// Match resolves each consolidated item (up to MaxItems, order preserved)
// to its catalog results. A failure on one item never aborts the batch:
// the item is recorded with empty results and an error marker, and the
// remaining items still run. The returned slice always has one entry per
// processed item, ordered by item index.
func (s *MatchService) Match(ctx context.Context, items []domain.ConsolidatedItem, opts MatchOptions, store domain.StoreConfig) []domain.MatchedItem {
	opts = opts.withDefaults()

	if len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}

	matched := make([]domain.MatchedItem, len(items))

	if s.workers <= 1 || len(items) <= 1 {
		for i, item := range items {
			matched[i] = s.matchOne(ctx, i, item, opts, store)
		}
		return matched
	}

	// Fan out across items. Each worker only writes its own index, and
	// matchOne never returns an error, so one item's failure cannot cancel
	// a sibling's in-flight request.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, item := range items {
		g.Go(func() error {
			matched[i] = s.matchOne(ctx, i, item, opts, store)
			return nil
		})
	}
	_ = g.Wait()

	return matched
}

// matchOne runs the search/relax/filter flow for a single item.
func (s *MatchService) matchOne(ctx context.Context, index int, item domain.ConsolidatedItem, opts MatchOptions, store domain.StoreConfig) domain.MatchedItem {
	query := BuildQuery(item)

	results, err := s.catalog.Search(ctx, query, opts.LimitPerItem, store)
	if err != nil {
		s.log.Warn().Err(err).Int("item_index", index).Str("query", query).
			Msg("catalog search failed, recording item without results")
		return domain.MatchedItem{
			ItemIndex: index,
			Item:      item,
			Query:     query,
			Results:   []domain.CatalogResult{},
			Error:     err.Error(),
		}
	}

	// Relaxation: a branded query that found nothing gets one retry with
	// the brand removed. The relaxed outcome is adopted only if it is
	// non-empty; a relaxed failure keeps the original empty outcome.
	if len(results) == 0 && item.BrandText != "" {
		relaxedQuery := BuildRelaxedQuery(item)
		if relaxedQuery != query {
			relaxed, relaxErr := s.catalog.Search(ctx, relaxedQuery, opts.LimitPerItem, store)
			if relaxErr == nil && len(relaxed) > 0 {
				s.log.Debug().Int("item_index", index).Str("query", relaxedQuery).
					Int("count", len(relaxed)).Msg("adopted relaxed query")
				query = relaxedQuery
				results = relaxed
			}
		}
	}

	if opts.PriceCap != nil {
		results = filterByPrice(results, *opts.PriceCap)
	}
	if results == nil {
		results = []domain.CatalogResult{}
	}

	return domain.MatchedItem{
		ItemIndex: index,
		Item:      item,
		Query:     query,
		Results:   results,
	}
}

// filterByPrice drops results above the cap. Results without a display
// price are dropped too: an unpriceable result cannot satisfy a budget.
func filterByPrice(results []domain.CatalogResult, cap float64) []domain.CatalogResult {
	filtered := make([]domain.CatalogResult, 0, len(results))
	for _, r := range results {
		if r.Price == nil || r.Price.Amount > cap {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
