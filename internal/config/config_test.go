package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/trailmatch/internal/testutil"
)

func TestDefaultMatchConfigValid(t *testing.T) {
	testutil.AssertNoError(t, DefaultMatchConfig().Validate())
}

func TestDefaultSectionConfigValid(t *testing.T) {
	testutil.AssertNoError(t, DefaultSectionConfig().Validate())
}

func TestDefaultHeatmapConfigValid(t *testing.T) {
	testutil.AssertNoError(t, DefaultHeatmapConfig().Validate())
}

func TestMatchConfigValidateRejectsBadZeroThreshold(t *testing.T) {
	cfg := DefaultMatchConfig()
	cfg.ZeroThresholdMeters = cfg.PerfectThresholdMeters
	testutil.AssertError(t, cfg.Validate())
}

func TestMatchConfigFluentSetters(t *testing.T) {
	cfg := DefaultMatchConfig()
	cfg.WithPerfectThreshold(10).WithMinMatchPercentage(80)
	if cfg.PerfectThresholdMeters != 10 || cfg.MinMatchPercentage != 80 {
		t.Fatalf("fluent setters did not apply: %+v", cfg)
	}
}

func TestLoadMatchConfigFilePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	if err := os.WriteFile(path, []byte(`{"min_match_percentage": 80}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadMatchConfigFile(path, DefaultMatchConfig())
	testutil.AssertNoError(t, err)

	if cfg.MinMatchPercentage != 80 {
		t.Errorf("MinMatchPercentage = %v, want 80", cfg.MinMatchPercentage)
	}
	if cfg.ResampleCount != DefaultMatchConfig().ResampleCount {
		t.Errorf("unrelated knob ResampleCount changed: %v", cfg.ResampleCount)
	}
}

func TestLoadMatchConfigFileRejectsNonJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := LoadMatchConfigFile(path, DefaultMatchConfig())
	testutil.AssertError(t, err)
}

func TestMustLoadMatchConfigFilePanicsOnBadFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustLoadMatchConfigFile to panic on a missing file")
		}
	}()
	MustLoadMatchConfigFile(filepath.Join(t.TempDir(), "missing.json"), DefaultMatchConfig())
}

func TestSectionConfigValidateRejectsInvertedLengths(t *testing.T) {
	cfg := DefaultSectionConfig()
	cfg.MaxSectionLengthMeters = cfg.MinSectionLengthMeters - 1
	testutil.AssertError(t, cfg.Validate())
}

func TestLoadSectionConfigFilePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	if err := os.WriteFile(path, []byte(`{"proximity_threshold_meters": 25}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadSectionConfigFile(path, DefaultSectionConfig())
	testutil.AssertNoError(t, err)

	if cfg.ProximityThresholdMeters != 25 {
		t.Errorf("ProximityThresholdMeters = %v, want 25", cfg.ProximityThresholdMeters)
	}
	if cfg.SamplePoints != DefaultSectionConfig().SamplePoints {
		t.Errorf("unrelated knob SamplePoints changed: %v", cfg.SamplePoints)
	}
}

func TestMustLoadSectionConfigFilePanicsOnBadFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustLoadSectionConfigFile to panic on a missing file")
		}
	}()
	MustLoadSectionConfigFile(filepath.Join(t.TempDir(), "missing.json"), DefaultSectionConfig())
}

func TestHeatmapConfigValidateRejectsInvertedBounds(t *testing.T) {
	cfg := DefaultHeatmapConfig()
	cfg.WithBounds(10, 5, 0, 1)
	testutil.AssertError(t, cfg.Validate())
}

func TestLoadHeatmapConfigFilePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	if err := os.WriteFile(path, []byte(`{"cell_size_meters": 50}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadHeatmapConfigFile(path, DefaultHeatmapConfig())
	testutil.AssertNoError(t, err)

	if cfg.CellSizeMeters != 50 {
		t.Errorf("CellSizeMeters = %v, want 50", cfg.CellSizeMeters)
	}
	if cfg.HasBounds {
		t.Error("HasBounds should stay false when no bound fields are given")
	}
}

func TestLoadHeatmapConfigFileRequiresAllBoundsTogether(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	if err := os.WriteFile(path, []byte(`{"min_lat": 50}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := LoadHeatmapConfigFile(path, DefaultHeatmapConfig())
	testutil.AssertError(t, err)
}

func TestMustLoadHeatmapConfigFilePanicsOnBadFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustLoadHeatmapConfigFile to panic on a missing file")
		}
	}()
	MustLoadHeatmapConfigFile(filepath.Join(t.TempDir(), "missing.json"), DefaultHeatmapConfig())
}
