package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/framecart/backend/internal/domain"
)

const (
	accessTokenHeader = "X-Shopify-Storefront-Access-Token"

	// Retry policy: 3 attempts total, backoff 0.5s * (attempt index + 1),
	// and only an HTTP 429 is retriable. GraphQL-level errors and other
	// non-200 statuses fail immediately.
	maxAttempts = 3
	backoffStep = 500 * time.Millisecond

	minSearchLimit = 1
	maxSearchLimit = 50
)

// Client executes Storefront GraphQL requests. It is stateless per call:
// the store identity is passed into each request, so one client serves any
// number of tenants.
type Client struct {
	httpClient  *resty.Client
	rateLimiter *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
	log         zerolog.Logger
}

// NewClient creates a Storefront client. Shopify's Storefront API allows
// roughly 2 requests/sec sustained per client IP; the limiter smooths
// bursts before the 429 handling has to kick in.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		httpClient: resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		rateLimiter: rate.NewLimiter(rate.Limit(2), 4),
		sleep:       sleepContext,
		log:         log,
	}
}

// Search runs a product search and maps the returned edges into catalog
// results. The limit is clamped to [1, 50] before being sent upstream.
func (c *Client) Search(ctx context.Context, query string, limit int, store domain.StoreConfig) ([]domain.CatalogResult, error) {
	store = store.Normalized()
	if err := store.Validate(); err != nil {
		return nil, err
	}

	if limit < minSearchLimit {
		limit = minSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var data productSearchData
	err := c.execute(ctx, store, graphqlRequest{
		Query: productSearchQuery,
		Variables: map[string]any{
			"query": query,
			"first": limit,
		},
	}, &data)
	if err != nil {
		return nil, err
	}

	results := mapProducts(data, store.Domain)
	c.log.Debug().Str("query", query).Int("count", len(results)).Msg("catalog search")
	return results, nil
}

// CreateCart submits line items and free-form attributes to a cartCreate
// mutation. User errors from the upstream, or a missing checkout URL even
// without errors, fail with a CartCreationError.
func (c *Client) CreateCart(ctx context.Context, lines []domain.CartLine, attributes map[string]string, store domain.StoreConfig) (*domain.Cart, error) {
	store = store.Normalized()
	if err := store.Validate(); err != nil {
		return nil, err
	}

	var data cartCreateData
	err := c.execute(ctx, store, graphqlRequest{
		Query: cartCreateMutation,
		Variables: map[string]any{
			"input": cartInput(lines, attributes),
		},
	}, &data)
	if err != nil {
		return nil, err
	}

	if len(data.CartCreate.UserErrors) > 0 {
		return nil, &domain.CartCreationError{UserErrors: data.CartCreate.UserErrors}
	}

	cart := data.CartCreate.Cart
	if cart == nil || cart.CheckoutURL == "" {
		return nil, &domain.CartCreationError{}
	}

	c.log.Info().Str("cart_id", cart.ID).Msg("cart created")
	return &domain.Cart{CartID: cart.ID, CheckoutURL: cart.CheckoutURL}, nil
}

// execute POSTs one GraphQL request with bounded retries. Each attempt gets
// its own timeout derived from the store config; backoff waits suspend on
// the context so a caller deadline aborts pending sleeps too.
func (c *Client) execute(ctx context.Context, store domain.StoreConfig, payload graphqlRequest, out any) error {
	endpoint := fmt.Sprintf("https://%s/api/%s/graphql.json", store.Domain, store.APIVersion)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err := c.doAttempt(ctx, endpoint, store, payload)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			if attempt == maxAttempts-1 {
				break
			}
			wait := backoffStep * time.Duration(attempt+1)
			c.log.Debug().Int("attempt", attempt+1).Dur("wait", wait).Msg("rate limited by storefront, backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode() != http.StatusOK {
			return &domain.UpstreamError{Status: resp.StatusCode(), Body: string(resp.Body())}
		}

		var envelope graphqlEnvelope
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
		}
		if len(envelope.Errors) > 0 {
			return &domain.UpstreamError{Status: resp.StatusCode(), Errors: envelope.Errors}
		}

		if out != nil && len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return fmt.Errorf("%w: decode data: %v", domain.ErrUpstream, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %d attempts exhausted", domain.ErrRateLimited, maxAttempts)
}

func (c *Client) doAttempt(ctx context.Context, endpoint string, store domain.StoreConfig, payload graphqlRequest) (*resty.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, store.Timeout)
	defer cancel()

	return c.httpClient.R().
		SetContext(attemptCtx).
		SetHeader(accessTokenHeader, store.AccessToken).
		SetBody(payload).
		Post(endpoint)
}

// cartInput builds the CartInput variable. Attribute keys are sorted so
// the request body is deterministic.
func cartInput(lines []domain.CartLine, attributes map[string]string) map[string]any {
	lineInputs := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lineInputs = append(lineInputs, map[string]any{
			"merchandiseId": line.VariantID,
			"quantity":      quantity,
		})
	}

	input := map[string]any{"lines": lineInputs}

	if len(attributes) > 0 {
		keys := make([]string, 0, len(attributes))
		for k := range attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrInputs := make([]map[string]string, 0, len(keys))
		for _, k := range keys {
			attrInputs = append(attrInputs, map[string]string{"key": k, "value": attributes[k]})
		}
		input["attributes"] = attrInputs
	}

	return input
}

// sleepContext waits without busying a thread and aborts with the context.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
