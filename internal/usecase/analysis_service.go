package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framecart/backend/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis pipeline.
type AnalysisServiceConfig struct {
	ResultTTL time.Duration
}

// AnalysisService runs the batch detection pipeline for one video:
// sample frames, analyze each with the vision model, consolidate the
// detections, and keep the result for later catalog matching.
type AnalysisService struct {
	extractor domain.FrameExtractor
	analyzer  domain.FrameAnalyzer
	store     domain.AnalysisStore
	resultTTL time.Duration
	log       zerolog.Logger
}

// NewAnalysisService creates an analysis service with dependencies.
func NewAnalysisService(
	extractor domain.FrameExtractor,
	analyzer domain.FrameAnalyzer,
	store domain.AnalysisStore,
	config AnalysisServiceConfig,
	log zerolog.Logger,
) *AnalysisService {
	ttl := config.ResultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &AnalysisService{
		extractor: extractor,
		analyzer:  analyzer,
		store:     store,
		resultTTL: ttl,
		log:       log,
	}
}

// AnalyzeVideo processes one video file end to end. A frame whose analysis
// fails is recorded inline with an empty product list and an error message;
// it never aborts the batch. Only frame extraction failures are fatal.
func (s *AnalysisService) AnalyzeVideo(ctx context.Context, videoPath string) (*domain.VideoAnalysis, error) {
	framePaths, err := s.extractor.ExtractFrames(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("frame extraction failed: %w", err)
	}

	var allDetections []domain.RawDetection
	frameAnalyses := make([]domain.FrameAnalysis, 0, len(framePaths))

	for i, framePath := range framePaths {
		frameNumber := i + 1
		frameFile := filepath.Base(framePath)

		analysis := domain.FrameAnalysis{
			FrameNumber: frameNumber,
			FrameFile:   frameFile,
			Products:    []domain.RawDetection{},
		}

		detections, analyzeErr := s.analyzeFrameFile(ctx, framePath)
		if analyzeErr != nil {
			s.log.Warn().Err(analyzeErr).Str("frame", frameFile).Msg("frame analysis failed")
			analysis.Error = analyzeErr.Error()
		} else {
			for j := range detections {
				detections[j].FrameNumber = frameNumber
				detections[j].FrameFile = frameFile
			}
			analysis.Products = detections
			allDetections = append(allDetections, detections...)
		}

		frameAnalyses = append(frameAnalyses, analysis)
	}

	consolidated := Consolidate(allDetections)

	result := &domain.VideoAnalysis{
		ID:                    uuid.NewString(),
		TotalFramesAnalyzed:   len(framePaths),
		TotalProductsDetected: len(allDetections),
		ConsolidatedProducts:  consolidated,
		FrameByFrameAnalysis:  frameAnalyses,
		Summary:               summarize(consolidated),
	}

	if err := s.store.Set(ctx, result, s.resultTTL); err != nil {
		s.log.Warn().Err(err).Str("analysis_id", result.ID).Msg("failed to store analysis result")
	}

	s.log.Info().
		Str("analysis_id", result.ID).
		Int("frames", result.TotalFramesAnalyzed).
		Int("detections", result.TotalProductsDetected).
		Int("items", len(consolidated)).
		Msg("video analysis complete")

	return result, nil
}

// GetAnalysis retrieves a previously stored analysis by id.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*domain.VideoAnalysis, error) {
	return s.store.Get(ctx, id)
}

func (s *AnalysisService) analyzeFrameFile(ctx context.Context, framePath string) ([]domain.RawDetection, error) {
	image, err := os.ReadFile(framePath)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return s.analyzer.AnalyzeFrame(ctx, image)
}

// summarize aggregates the consolidated catalog for display.
func summarize(items []domain.ConsolidatedItem) domain.AnalysisSummary {
	if len(items) == 0 {
		return domain.AnalysisSummary{Message: "No fashion products detected in the video"}
	}

	summary := domain.AnalysisSummary{
		TotalUniqueProducts: len(items),
		ProductTypes:        make(map[string]int),
		DominantColors:      make(map[string]int),
	}

	seenBrands := make(map[string]bool)
	for _, item := range items {
		itemType := item.Type
		if itemType == "" {
			itemType = "unknown"
		}
		summary.ProductTypes[itemType]++

		color := item.Color
		if color == "" {
			color = "unknown"
		}
		summary.DominantColors[color]++

		if item.BrandText != "" && !seenBrands[item.BrandText] {
			seenBrands[item.BrandText] = true
			summary.BrandsDetected = append(summary.BrandsDetected, item.BrandText)
		}
	}
	sort.Strings(summary.BrandsDetected)

	return summary
}
