package optimizer

import (
	"fmt"
	"math"

	"github.com/jwaldner/optionroi/internal/pricing"
)

// Prediction is the user's belief about the underlying at the horizon.
// Horizon is measured in years from now.
type Prediction struct {
	TargetPrice float64 `json:"target_price" yaml:"target_price"`
	Horizon     float64 `json:"horizon" yaml:"horizon"`
}

// Validate checks the field invariants of the prediction.
func (p Prediction) Validate() error {
	if math.IsNaN(p.TargetPrice) || math.IsInf(p.TargetPrice, 0) || p.TargetPrice <= 0 {
		return fmt.Errorf("%w: target price must be positive, got %v", pricing.ErrInvalidInput, p.TargetPrice)
	}
	if math.IsNaN(p.Horizon) || math.IsInf(p.Horizon, 0) || p.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %v", pricing.ErrInvalidInput, p.Horizon)
	}
	return nil
}

// OptionSpec is a candidate contract. Expiry is in years from now.
type OptionSpec struct {
	Kind   pricing.Kind `json:"kind"`
	Strike float64      `json:"strike"`
	Expiry float64      `json:"expiry"`
}

// Config holds the search hyperparameters. Strikes are searched within
// [min(spot, target)/MaxStrikeRatio, max(spot, target)*MaxStrikeRatio] and
// expiries up to MaxExtraExpiry years past the horizon.
type Config struct {
	MaxIterations        int     `json:"max_iterations" yaml:"max_iterations"`
	ConvergenceTolerance float64 `json:"convergence_tolerance" yaml:"convergence_tolerance"`
	InitialStepSize      float64 `json:"initial_step_size" yaml:"initial_step_size"`
	MinEntryPrice        float64 `json:"min_entry_price" yaml:"min_entry_price"`
	MaxStrikeRatio       float64 `json:"max_strike_ratio" yaml:"max_strike_ratio"`
	MaxExtraExpiry       float64 `json:"max_extra_expiry" yaml:"max_extra_expiry"`
}

// DefaultConfig returns the hyperparameters used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxIterations:        5000,
		ConvergenceTolerance: 1e-9,
		InitialStepSize:      1.0,
		MinEntryPrice:        1e-5,
		MaxStrikeRatio:       4,
		MaxExtraExpiry:       2,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive, got %d", pricing.ErrInvalidInput, c.MaxIterations)
	case !(c.ConvergenceTolerance > 0):
		return fmt.Errorf("%w: convergence tolerance must be positive, got %v", pricing.ErrInvalidInput, c.ConvergenceTolerance)
	case !(c.InitialStepSize > 0) || math.IsInf(c.InitialStepSize, 0):
		return fmt.Errorf("%w: initial step size must be positive, got %v", pricing.ErrInvalidInput, c.InitialStepSize)
	case !(c.MinEntryPrice >= 0) || math.IsInf(c.MinEntryPrice, 0):
		return fmt.Errorf("%w: min entry price must be non-negative, got %v", pricing.ErrInvalidInput, c.MinEntryPrice)
	case !(c.MaxStrikeRatio >= 1) || math.IsInf(c.MaxStrikeRatio, 0):
		return fmt.Errorf("%w: max strike ratio must be at least 1, got %v", pricing.ErrInvalidInput, c.MaxStrikeRatio)
	case !(c.MaxExtraExpiry > 0) || math.IsInf(c.MaxExtraExpiry, 0):
		return fmt.Errorf("%w: max extra expiry must be positive, got %v", pricing.ErrInvalidInput, c.MaxExtraExpiry)
	}
	return nil
}

// Stop reasons reported in a Trace.
const (
	StopGradient      = "gradient_tolerance"
	StopStalled       = "line_search_stalled"
	StopMaxIterations = "max_iterations"
	// StopBound means ROI was still rising at an edge of the search box; the
	// contract is the best inside the box but the run is not converged.
	StopBound = "search_bound"
)

// Trace summarises one ascent run.
type Trace struct {
	Seed         OptionSpec `json:"seed"`
	SeedROI      float64    `json:"seed_roi"`
	Iterations   int        `json:"iterations"`
	Evaluations  int        `json:"evaluations"`
	GradientNorm float64    `json:"gradient_norm"`
	Converged    bool       `json:"converged"`
	StopReason   string     `json:"stop_reason"`
}

// Recommendation is the rounded trade for one option kind.
type Recommendation struct {
	Contract OptionSpec    `json:"contract"`
	Entry    pricing.Quote `json:"entry"`
	Exit     pricing.Quote `json:"exit"`
	// ROI is computed from the rounded quotes and may differ slightly from
	// ModelROI, the unrounded value the search maximised.
	ROI        float64 `json:"roi"`
	ModelEntry float64 `json:"model_entry"`
	ModelExit  float64 `json:"model_exit"`
	ModelROI   float64 `json:"model_roi"`
	Search     Trace   `json:"search"`
}

// Result carries both branches and which one is better.
type Result struct {
	Call Recommendation `json:"call"`
	Put  Recommendation `json:"put"`
	Best pricing.Kind   `json:"best"`
}

// Recommended returns the branch with the higher unrounded ROI.
func (r Result) Recommended() Recommendation {
	if r.Best == pricing.Put {
		return r.Put
	}
	return r.Call
}
