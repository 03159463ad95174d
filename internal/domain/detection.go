package domain

// RawDetection is a single item observation extracted from one video frame.
// One record is produced per detected item per analyzed frame.
type RawDetection struct {
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	Pattern     string  `json:"pattern"`
	Material    string  `json:"material"`
	BrandText   string  `json:"brand_text"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"` // 0.0-1.0 from the vision model
	Position    string  `json:"position,omitempty"`
	FrameNumber int     `json:"frame_number"`
	FrameFile   string  `json:"frame_file"`
}

// ConsolidatedItem is the canonical record for one physical item, merged
// from every detection that shares its (type, lowercase color) identity key.
type ConsolidatedItem struct {
	Type              string   `json:"type"`
	Color             string   `json:"color"`
	Pattern           string   `json:"pattern"`
	Material          string   `json:"material"`
	BrandText         string   `json:"brand_text"`
	Description       string   `json:"description"` // longest description seen
	AverageConfidence float64  `json:"average_confidence"`
	FramesSeen        []int    `json:"frames_seen"` // sorted, de-duplicated
	FrameCount        int      `json:"frame_count"`
	AllDescriptions   []string `json:"all_descriptions"`
}

// FrameAnalysis records the outcome of analyzing a single frame.
// Analysis failures are non-fatal: Error is set and Products stays empty.
type FrameAnalysis struct {
	FrameNumber int            `json:"frame_number"`
	FrameFile   string         `json:"frame_file"`
	Products    []RawDetection `json:"products"`
	Error       string         `json:"error,omitempty"`
}

// VideoAnalysis is the full result of running the detection pipeline over
// one video. Stored in memory for the process lifetime only.
type VideoAnalysis struct {
	ID                    string             `json:"id"`
	TotalFramesAnalyzed   int                `json:"total_frames_analyzed"`
	TotalProductsDetected int                `json:"total_products_detected"`
	ConsolidatedProducts  []ConsolidatedItem `json:"consolidated_products"`
	FrameByFrameAnalysis  []FrameAnalysis    `json:"frame_by_frame_analysis"`
	Summary               AnalysisSummary    `json:"summary"`
}

// AnalysisSummary aggregates the consolidated catalog for display.
type AnalysisSummary struct {
	Message             string         `json:"message,omitempty"`
	TotalUniqueProducts int            `json:"total_unique_products"`
	ProductTypes        map[string]int `json:"product_types,omitempty"`
	DominantColors      map[string]int `json:"dominant_colors,omitempty"`
	BrandsDetected      []string       `json:"brands_detected,omitempty"`
}
