package domain

import (
	"context"
	"time"
)

// CatalogClient defines the interface for the external product catalog.
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int, store StoreConfig) ([]CatalogResult, error)
	CreateCart(ctx context.Context, lines []CartLine, attributes map[string]string, store StoreConfig) (*Cart, error)
}

// FrameAnalyzer runs the vision model against a single frame image.
type FrameAnalyzer interface {
	AnalyzeFrame(ctx context.Context, image []byte) ([]RawDetection, error)
}

// FrameExtractor samples frames from a video file, ordered by time.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string) ([]string, error)
}

// VideoFetcher downloads a remote video to a local file.
type VideoFetcher interface {
	FetchVideo(ctx context.Context, url string) (string, error)
}

// AnalysisStore holds completed video analyses for the process lifetime.
type AnalysisStore interface {
	Get(ctx context.Context, id string) (*VideoAnalysis, error)
	Set(ctx context.Context, analysis *VideoAnalysis, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
