// Package config holds the tunable parameter sets for route matching,
// section detection, and heatmap aggregation. Each config follows the same
// shape: a plain struct of numeric/bool knobs, a Default*Config constructor,
// fluent With* setters for programmatic tuning, and a Validate method that
// reports the offending field and value on failure.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxConfigFileSize bounds how large a JSON override file we will read.
const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// MatchConfig controls route-signature simplification and AMD comparison.
// See DefaultMatchConfig for the recommended starting point.
type MatchConfig struct {
	PerfectThresholdMeters  float64 // AMD at/below which score = 100
	ZeroThresholdMeters     float64 // AMD at/above which score = 0
	MinMatchPercentage      float64 // matcher's no-match gate
	MinRouteDistanceMeters  float64 // grouper rejects pairs where either length is below this
	MaxDistanceDiffRatio    float64 // grouper rejects pairs whose lengths differ more than this ratio
	EndpointThresholdMeters float64 // start/end proximity for direction + grouping + loop detection
	ResampleCount           int     // points used in AMD comparison
	SimplificationTolerance float64 // Douglas-Peucker tolerance, in degrees
	MaxSimplifiedPoints     int     // post-simplification cap
}

// DefaultMatchConfig returns the spec-mandated defaults (spec.md section 6).
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		PerfectThresholdMeters:  30,
		ZeroThresholdMeters:     250,
		MinMatchPercentage:      65,
		MinRouteDistanceMeters:  500,
		MaxDistanceDiffRatio:    0.20,
		EndpointThresholdMeters: 200,
		ResampleCount:           50,
		SimplificationTolerance: 0.0001,
		MaxSimplifiedPoints:     100,
	}
}

// WithPerfectThreshold sets PerfectThresholdMeters and returns c for chaining.
func (c *MatchConfig) WithPerfectThreshold(m float64) *MatchConfig {
	c.PerfectThresholdMeters = m
	return c
}

// WithZeroThreshold sets ZeroThresholdMeters and returns c for chaining.
func (c *MatchConfig) WithZeroThreshold(m float64) *MatchConfig {
	c.ZeroThresholdMeters = m
	return c
}

// WithMinMatchPercentage sets MinMatchPercentage and returns c for chaining.
func (c *MatchConfig) WithMinMatchPercentage(p float64) *MatchConfig {
	c.MinMatchPercentage = p
	return c
}

// WithResampleCount sets ResampleCount and returns c for chaining.
func (c *MatchConfig) WithResampleCount(n int) *MatchConfig {
	c.ResampleCount = n
	return c
}

// Validate checks that every knob is in a usable range.
func (c MatchConfig) Validate() error {
	if c.PerfectThresholdMeters < 0 {
		return fmt.Errorf("PerfectThresholdMeters must be non-negative, got %v", c.PerfectThresholdMeters)
	}
	if c.ZeroThresholdMeters <= c.PerfectThresholdMeters {
		return fmt.Errorf("ZeroThresholdMeters must exceed PerfectThresholdMeters, got %v <= %v", c.ZeroThresholdMeters, c.PerfectThresholdMeters)
	}
	if c.MinMatchPercentage < 0 || c.MinMatchPercentage > 100 {
		return fmt.Errorf("MinMatchPercentage must be in [0, 100], got %v", c.MinMatchPercentage)
	}
	if c.MinRouteDistanceMeters < 0 {
		return fmt.Errorf("MinRouteDistanceMeters must be non-negative, got %v", c.MinRouteDistanceMeters)
	}
	if c.MaxDistanceDiffRatio < 0 || c.MaxDistanceDiffRatio > 1 {
		return fmt.Errorf("MaxDistanceDiffRatio must be in [0, 1], got %v", c.MaxDistanceDiffRatio)
	}
	if c.EndpointThresholdMeters < 0 {
		return fmt.Errorf("EndpointThresholdMeters must be non-negative, got %v", c.EndpointThresholdMeters)
	}
	if c.ResampleCount < 2 {
		return fmt.Errorf("ResampleCount must be >= 2, got %d", c.ResampleCount)
	}
	if c.SimplificationTolerance < 0 {
		return fmt.Errorf("SimplificationTolerance must be non-negative, got %v", c.SimplificationTolerance)
	}
	if c.MaxSimplifiedPoints < 2 {
		return fmt.Errorf("MaxSimplifiedPoints must be >= 2, got %d", c.MaxSimplifiedPoints)
	}
	return nil
}

// SectionConfig controls the frequent-section detection pipeline.
type SectionConfig struct {
	ProximityThresholdMeters float64 // near-run membership distance
	MinSectionLengthMeters   float64
	MaxSectionLengthMeters   float64
	MinActivities            int
	ClusterToleranceMeters   float64
	SamplePoints             int // points used for AMD during medoid selection only
}

// DefaultSectionConfig returns the spec-mandated defaults (spec.md section 6).
func DefaultSectionConfig() SectionConfig {
	return SectionConfig{
		ProximityThresholdMeters: 50,
		MinSectionLengthMeters:   200,
		MaxSectionLengthMeters:   5000,
		MinActivities:            3,
		ClusterToleranceMeters:   80,
		SamplePoints:             50,
	}
}

// WithProximityThreshold sets ProximityThresholdMeters and returns c for chaining.
func (c *SectionConfig) WithProximityThreshold(m float64) *SectionConfig {
	c.ProximityThresholdMeters = m
	return c
}

// WithMinActivities sets MinActivities and returns c for chaining.
func (c *SectionConfig) WithMinActivities(n int) *SectionConfig {
	c.MinActivities = n
	return c
}

// Validate checks that every knob is in a usable range.
func (c SectionConfig) Validate() error {
	if c.ProximityThresholdMeters <= 0 {
		return fmt.Errorf("ProximityThresholdMeters must be positive, got %v", c.ProximityThresholdMeters)
	}
	if c.MinSectionLengthMeters <= 0 {
		return fmt.Errorf("MinSectionLengthMeters must be positive, got %v", c.MinSectionLengthMeters)
	}
	if c.MaxSectionLengthMeters < c.MinSectionLengthMeters {
		return fmt.Errorf("MaxSectionLengthMeters must be >= MinSectionLengthMeters, got %v < %v", c.MaxSectionLengthMeters, c.MinSectionLengthMeters)
	}
	if c.MinActivities < 1 {
		return fmt.Errorf("MinActivities must be >= 1, got %d", c.MinActivities)
	}
	if c.ClusterToleranceMeters <= 0 {
		return fmt.Errorf("ClusterToleranceMeters must be positive, got %v", c.ClusterToleranceMeters)
	}
	if c.SamplePoints < 2 {
		return fmt.Errorf("SamplePoints must be >= 2, got %d", c.SamplePoints)
	}
	return nil
}

// HeatmapConfig controls sparse grid aggregation.
type HeatmapConfig struct {
	CellSizeMeters float64
	HasBounds      bool // true if MinLat/MaxLat/MinLng/MaxLng should clip ingested points
	MinLat         float64
	MaxLat         float64
	MinLng         float64
	MaxLng         float64
}

// DefaultHeatmapConfig returns the spec-mandated defaults (spec.md section 6).
func DefaultHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{
		CellSizeMeters: 100,
	}
}

// WithCellSize sets CellSizeMeters and returns c for chaining.
func (c *HeatmapConfig) WithCellSize(m float64) *HeatmapConfig {
	c.CellSizeMeters = m
	return c
}

// WithBounds sets a clip region and returns c for chaining.
func (c *HeatmapConfig) WithBounds(minLat, maxLat, minLng, maxLng float64) *HeatmapConfig {
	c.HasBounds = true
	c.MinLat, c.MaxLat, c.MinLng, c.MaxLng = minLat, maxLat, minLng, maxLng
	return c
}

// Validate checks that every knob is in a usable range.
func (c HeatmapConfig) Validate() error {
	if c.CellSizeMeters <= 0 {
		return fmt.Errorf("CellSizeMeters must be positive, got %v", c.CellSizeMeters)
	}
	if c.HasBounds {
		if c.MinLat > c.MaxLat {
			return fmt.Errorf("MinLat must be <= MaxLat, got %v > %v", c.MinLat, c.MaxLat)
		}
		if c.MinLng > c.MaxLng {
			return fmt.Errorf("MinLng must be <= MaxLng, got %v > %v", c.MinLng, c.MaxLng)
		}
	}
	return nil
}

// matchConfigOverrides mirrors MatchConfig with pointer fields so a JSON
// document only overrides the knobs it mentions, leaving the rest at
// whatever the caller passed as the base.
type matchConfigOverrides struct {
	PerfectThresholdMeters  *float64 `json:"perfect_threshold_meters,omitempty"`
	ZeroThresholdMeters     *float64 `json:"zero_threshold_meters,omitempty"`
	MinMatchPercentage      *float64 `json:"min_match_percentage,omitempty"`
	MinRouteDistanceMeters  *float64 `json:"min_route_distance_meters,omitempty"`
	MaxDistanceDiffRatio    *float64 `json:"max_distance_diff_ratio,omitempty"`
	EndpointThresholdMeters *float64 `json:"endpoint_threshold_meters,omitempty"`
	ResampleCount           *int     `json:"resample_count,omitempty"`
	SimplificationTolerance *float64 `json:"simplification_tolerance,omitempty"`
	MaxSimplifiedPoints     *int     `json:"max_simplified_points,omitempty"`
}

// LoadMatchConfigFile reads a JSON override document at path and applies it
// on top of base. Fields omitted from the file retain base's value.
func LoadMatchConfigFile(path string, base MatchConfig) (MatchConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return MatchConfig{}, err
	}

	var overrides matchConfigOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return MatchConfig{}, fmt.Errorf("failed to parse match config JSON: %w", err)
	}

	cfg := base
	if overrides.PerfectThresholdMeters != nil {
		cfg.PerfectThresholdMeters = *overrides.PerfectThresholdMeters
	}
	if overrides.ZeroThresholdMeters != nil {
		cfg.ZeroThresholdMeters = *overrides.ZeroThresholdMeters
	}
	if overrides.MinMatchPercentage != nil {
		cfg.MinMatchPercentage = *overrides.MinMatchPercentage
	}
	if overrides.MinRouteDistanceMeters != nil {
		cfg.MinRouteDistanceMeters = *overrides.MinRouteDistanceMeters
	}
	if overrides.MaxDistanceDiffRatio != nil {
		cfg.MaxDistanceDiffRatio = *overrides.MaxDistanceDiffRatio
	}
	if overrides.EndpointThresholdMeters != nil {
		cfg.EndpointThresholdMeters = *overrides.EndpointThresholdMeters
	}
	if overrides.ResampleCount != nil {
		cfg.ResampleCount = *overrides.ResampleCount
	}
	if overrides.SimplificationTolerance != nil {
		cfg.SimplificationTolerance = *overrides.SimplificationTolerance
	}
	if overrides.MaxSimplifiedPoints != nil {
		cfg.MaxSimplifiedPoints = *overrides.MaxSimplifiedPoints
	}

	if err := cfg.Validate(); err != nil {
		return MatchConfig{}, fmt.Errorf("invalid match config: %w", err)
	}
	return cfg, nil
}

// MustLoadMatchConfigFile is LoadMatchConfigFile but panics on error, for
// startup/test code that treats a malformed config file as fatal.
func MustLoadMatchConfigFile(path string, base MatchConfig) MatchConfig {
	cfg, err := LoadMatchConfigFile(path, base)
	if err != nil {
		panic(err)
	}
	return cfg
}

// sectionConfigOverrides mirrors SectionConfig with pointer fields so a
// JSON document only overrides the knobs it mentions.
type sectionConfigOverrides struct {
	ProximityThresholdMeters *float64 `json:"proximity_threshold_meters,omitempty"`
	MinSectionLengthMeters   *float64 `json:"min_section_length_meters,omitempty"`
	MaxSectionLengthMeters   *float64 `json:"max_section_length_meters,omitempty"`
	MinActivities            *int     `json:"min_activities,omitempty"`
	ClusterToleranceMeters   *float64 `json:"cluster_tolerance_meters,omitempty"`
	SamplePoints             *int     `json:"sample_points,omitempty"`
}

// LoadSectionConfigFile reads a JSON override document at path and applies
// it on top of base. Fields omitted from the file retain base's value —
// e.g. a caller can tune only proximity_threshold_meters while keeping
// every other SectionConfig default.
func LoadSectionConfigFile(path string, base SectionConfig) (SectionConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return SectionConfig{}, err
	}

	var overrides sectionConfigOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return SectionConfig{}, fmt.Errorf("failed to parse section config JSON: %w", err)
	}

	cfg := base
	if overrides.ProximityThresholdMeters != nil {
		cfg.ProximityThresholdMeters = *overrides.ProximityThresholdMeters
	}
	if overrides.MinSectionLengthMeters != nil {
		cfg.MinSectionLengthMeters = *overrides.MinSectionLengthMeters
	}
	if overrides.MaxSectionLengthMeters != nil {
		cfg.MaxSectionLengthMeters = *overrides.MaxSectionLengthMeters
	}
	if overrides.MinActivities != nil {
		cfg.MinActivities = *overrides.MinActivities
	}
	if overrides.ClusterToleranceMeters != nil {
		cfg.ClusterToleranceMeters = *overrides.ClusterToleranceMeters
	}
	if overrides.SamplePoints != nil {
		cfg.SamplePoints = *overrides.SamplePoints
	}

	if err := cfg.Validate(); err != nil {
		return SectionConfig{}, fmt.Errorf("invalid section config: %w", err)
	}
	return cfg, nil
}

// MustLoadSectionConfigFile is LoadSectionConfigFile but panics on error.
func MustLoadSectionConfigFile(path string, base SectionConfig) SectionConfig {
	cfg, err := LoadSectionConfigFile(path, base)
	if err != nil {
		panic(err)
	}
	return cfg
}

// heatmapConfigOverrides mirrors HeatmapConfig with pointer fields so a
// JSON document only overrides the knobs it mentions. HasBounds is
// inferred: if any of the four bound fields is present, all four must be,
// and HasBounds is set true on the result.
type heatmapConfigOverrides struct {
	CellSizeMeters *float64 `json:"cell_size_meters,omitempty"`
	MinLat         *float64 `json:"min_lat,omitempty"`
	MaxLat         *float64 `json:"max_lat,omitempty"`
	MinLng         *float64 `json:"min_lng,omitempty"`
	MaxLng         *float64 `json:"max_lng,omitempty"`
}

// LoadHeatmapConfigFile reads a JSON override document at path and applies
// it on top of base. Fields omitted from the file retain base's value.
func LoadHeatmapConfigFile(path string, base HeatmapConfig) (HeatmapConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return HeatmapConfig{}, err
	}

	var overrides heatmapConfigOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return HeatmapConfig{}, fmt.Errorf("failed to parse heatmap config JSON: %w", err)
	}

	cfg := base
	if overrides.CellSizeMeters != nil {
		cfg.CellSizeMeters = *overrides.CellSizeMeters
	}
	boundsGiven := overrides.MinLat != nil || overrides.MaxLat != nil || overrides.MinLng != nil || overrides.MaxLng != nil
	if boundsGiven {
		if overrides.MinLat == nil || overrides.MaxLat == nil || overrides.MinLng == nil || overrides.MaxLng == nil {
			return HeatmapConfig{}, fmt.Errorf("heatmap config bounds must set min_lat, max_lat, min_lng, and max_lng together")
		}
		cfg.HasBounds = true
		cfg.MinLat, cfg.MaxLat, cfg.MinLng, cfg.MaxLng = *overrides.MinLat, *overrides.MaxLat, *overrides.MinLng, *overrides.MaxLng
	}

	if err := cfg.Validate(); err != nil {
		return HeatmapConfig{}, fmt.Errorf("invalid heatmap config: %w", err)
	}
	return cfg, nil
}

// MustLoadHeatmapConfigFile is LoadHeatmapConfigFile but panics on error.
func MustLoadHeatmapConfigFile(path string, base HeatmapConfig) HeatmapConfig {
	cfg, err := LoadHeatmapConfigFile(path, base)
	if err != nil {
		panic(err)
	}
	return cfg
}

// readConfigFile validates the extension and size of a config file before
// reading it; all three Load*ConfigFile functions go through it.
func readConfigFile(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}
