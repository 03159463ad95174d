package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framecart/backend/internal/domain"
	"github.com/framecart/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysis     *usecase.AnalysisService
	match        *usecase.MatchService
	catalog      domain.CatalogClient
	fetcher      domain.VideoFetcher
	defaultStore domain.StoreConfig
	matchDefaults usecase.MatchOptions
	log          zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	analysis *usecase.AnalysisService,
	match *usecase.MatchService,
	catalog domain.CatalogClient,
	fetcher domain.VideoFetcher,
	defaultStore domain.StoreConfig,
	matchDefaults usecase.MatchOptions,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		analysis:      analysis,
		match:         match,
		catalog:       catalog,
		fetcher:       fetcher,
		defaultStore:  defaultStore,
		matchDefaults: matchDefaults,
		log:           log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "framecart-backend",
		"version": "1.0.0",
	})
}

// storeOverride is an optional per-request catalog tenant.
type storeOverride struct {
	Domain      string `json:"domain"`
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"`
}

// resolveStore applies a request-level store override on top of the
// configured default. The result is still immutable per request.
func (h *Handler) resolveStore(override *storeOverride) domain.StoreConfig {
	store := h.defaultStore
	if override != nil {
		if override.Domain != "" {
			store.Domain = override.Domain
			store.AccessToken = override.AccessToken
			store.APIVersion = override.APIVersion
		} else if override.AccessToken != "" {
			store.AccessToken = override.AccessToken
		}
	}
	return store.Normalized()
}

type searchRequest struct {
	Query string         `json:"query" binding:"required"`
	Limit int            `json:"limit"`
	Store *storeOverride `json:"store"`
}

// SearchCatalog runs a single catalog search.
func (h *Handler) SearchCatalog(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	store := h.resolveStore(req.Store)
	if err := store.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.matchDefaults.LimitPerItem
	}

	results, err := h.catalog.Search(c.Request.Context(), req.Query, limit, store)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store":   store.Domain,
		"query":   req.Query,
		"count":   len(results),
		"results": results,
	})
}

type matchRequest struct {
	Analysis *struct {
		ConsolidatedProducts []domain.ConsolidatedItem `json:"consolidated_products"`
	} `json:"analysis" binding:"required"`
	Store        *storeOverride `json:"store"`
	LimitPerItem int            `json:"limit_per_item"`
	MaxItems     int            `json:"max_items"`
	PriceCap     *float64       `json:"price_cap"`
}

// MatchFromAnalysis matches every consolidated item of an analysis payload
// against the catalog. The response always carries one entry per processed
// item, even when that item's upstream call failed.
func (h *Handler) MatchFromAnalysis(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Analysis == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis.consolidated_products is required"})
		return
	}

	store := h.resolveStore(req.Store)
	if err := store.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := h.matchDefaults
	if req.LimitPerItem > 0 {
		opts.LimitPerItem = req.LimitPerItem
	}
	if req.MaxItems > 0 {
		opts.MaxItems = req.MaxItems
	}
	opts.PriceCap = req.PriceCap

	items := h.match.Match(c.Request.Context(), req.Analysis.ConsolidatedProducts, opts, store)

	c.JSON(http.StatusOK, gin.H{
		"store": store.Domain,
		"items": items,
	})
}

type cartRequest struct {
	Lines      []domain.CartLine `json:"lines" binding:"required,min=1"`
	Attributes map[string]string `json:"attributes"`
	Store      *storeOverride    `json:"store"`
}

// CreateCart creates a cart with the given variant lines.
func (h *Handler) CreateCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one cart line is required"})
		return
	}

	store := h.resolveStore(req.Store)
	if err := store.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.catalog.CreateCart(c.Request.Context(), req.Lines, req.Attributes, store)
	if err != nil {
		var cartErr *domain.CartCreationError
		if errors.As(err, &cartErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       cartErr.Error(),
				"user_errors": cartErr.UserErrors,
			})
			return
		}
		h.respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AnalyzeVideo accepts an uploaded video and runs the detection pipeline.
func (h *Handler) AnalyzeVideo(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	videoPath := filepath.Join(os.TempDir(), "framecart-upload-"+time.Now().Format("20060102150405.000")+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, videoPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.Remove(videoPath)

	result, err := h.analysis.AnalyzeVideo(c.Request.Context(), videoPath)
	if err != nil {
		h.log.Error().Err(err).Msg("video analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

type ingestRequest struct {
	URL string `json:"url" binding:"required"`
}

// IngestVideo downloads a remote video and runs the detection pipeline.
func (h *Handler) IngestVideo(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	videoPath, err := h.fetcher.FetchVideo(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(videoPath)

	result, err := h.analysis.AnalyzeVideo(c.Request.Context(), videoPath)
	if err != nil {
		h.log.Error().Err(err).Msg("video analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

// GetAnalysis returns a previously stored analysis by id.
func (h *Handler) GetAnalysis(c *gin.Context) {
	result, err := h.analysis.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

// respondCatalogError maps catalog client failures to HTTP statuses.
func (h *Handler) respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
