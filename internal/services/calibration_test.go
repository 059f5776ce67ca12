package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCalibrationOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.yaml")
	raw := []byte("evidence_blend_weight: 0.7\nconsensus_blend_weight: 0.3\nopen_challenge_penalty: 0.2\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cal, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration: %v", err)
	}
	if cal.EvidenceBlendWeight != 0.7 || cal.ConsensusBlendWeight != 0.3 || cal.OpenChallengePenalty != 0.2 {
		t.Fatalf("overrides not applied: %+v", cal)
	}
	// Untouched keys keep their defaults.
	if cal.TemporalDecayHalfLifeDays != 180 || cal.StatsComponentRadius != 2 {
		t.Fatalf("defaults lost: %+v", cal)
	}
}

func TestLoadCalibrationEmptyPath(t *testing.T) {
	cal, err := LoadCalibration("")
	if err != nil {
		t.Fatalf("LoadCalibration: %v", err)
	}
	if cal != DefaultCalibration() {
		t.Fatalf("empty path must return defaults")
	}
}

func TestLoadCalibrationRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.yaml")
	if err := os.WriteFile(path, []byte("temporal_decay_half_life_days: -1\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadCalibration(path); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestLoadCalibrationMissingFile(t *testing.T) {
	if _, err := LoadCalibration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
