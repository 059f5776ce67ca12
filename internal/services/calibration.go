package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Calibration holds the scoring policy constants. The blend weights and
// penalties are product-calibrated values, not derived ones; ship defaults
// here and override per deployment with a YAML file.
type Calibration struct {
	EvidenceBlendWeight  float64 `yaml:"evidence_blend_weight"`
	ConsensusBlendWeight float64 `yaml:"consensus_blend_weight"`

	NeutralPrior float64 `yaml:"neutral_prior"`
	Epsilon      float64 `yaml:"epsilon"`

	OpenChallengePenalty   float64 `yaml:"open_challenge_penalty"`
	ResolvedAgainstPenalty float64 `yaml:"resolved_against_penalty"`
	MaxChallengePenalty    float64 `yaml:"max_challenge_penalty"`

	TemporalDecayFloor        float64 `yaml:"temporal_decay_floor"`
	TemporalDecayHalfLifeDays float64 `yaml:"temporal_decay_half_life_days"`

	SubgraphBaseRelevance  float64 `yaml:"subgraph_base_relevance"`
	SubgraphDecayFactor    float64 `yaml:"subgraph_decay_factor"`
	SubgraphRelevanceFloor float64 `yaml:"subgraph_relevance_floor"`

	StatsComponentRadius int `yaml:"stats_component_radius"`
}

func DefaultCalibration() Calibration {
	return Calibration{
		EvidenceBlendWeight:  0.6,
		ConsensusBlendWeight: 0.4,

		NeutralPrior: 0.5,
		Epsilon:      1e-4,

		OpenChallengePenalty:   0.15,
		ResolvedAgainstPenalty: 0.05,
		MaxChallengePenalty:    0.9,

		TemporalDecayFloor:        0.5,
		TemporalDecayHalfLifeDays: 180,

		SubgraphBaseRelevance:  1.0,
		SubgraphDecayFactor:    0.7,
		SubgraphRelevanceFloor: 0.2,

		StatsComponentRadius: 2,
	}
}

// LoadCalibration overlays a YAML file on the defaults. An empty path
// returns the defaults unchanged.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()
	if path == "" {
		return cal, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cal, fmt.Errorf("read calibration file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cal); err != nil {
		return cal, fmt.Errorf("parse calibration file: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return cal, err
	}
	return cal, nil
}

func (c Calibration) Validate() error {
	if c.EvidenceBlendWeight < 0 || c.ConsensusBlendWeight < 0 {
		return fmt.Errorf("calibration: blend weights must be non-negative")
	}
	if c.TemporalDecayFloor < 0 || c.TemporalDecayFloor > 1 {
		return fmt.Errorf("calibration: temporal_decay_floor must be in [0,1]")
	}
	if c.TemporalDecayHalfLifeDays <= 0 {
		return fmt.Errorf("calibration: temporal_decay_half_life_days must be positive")
	}
	if c.SubgraphDecayFactor <= 0 || c.SubgraphDecayFactor > 1 {
		return fmt.Errorf("calibration: subgraph_decay_factor must be in (0,1]")
	}
	if c.StatsComponentRadius < 1 {
		return fmt.Errorf("calibration: stats_component_radius must be at least 1")
	}
	return nil
}
