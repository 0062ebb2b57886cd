package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jwaldner/optionroi/internal/models"
	"github.com/jwaldner/optionroi/internal/optimizer"
	"github.com/jwaldner/optionroi/internal/payoff"
	"github.com/jwaldner/optionroi/internal/pricing"
)

// DefaultCurvePoints is used when a payoff request does not name a count
const DefaultCurvePoints = 101

// MaxCurvePoints bounds the work a single payoff request can ask for
const MaxCurvePoints = 2001

// RequestService handles HTTP request parsing
type RequestService struct{}

// NewRequestService creates a new request service
func NewRequestService() *RequestService {
	return &RequestService{}
}

// OptimizeInput is a validated optimize request
type OptimizeInput struct {
	Env        pricing.Environment
	Prediction optimizer.Prediction
}

// QuoteInput is a validated quote request
type QuoteInput struct {
	Env     pricing.Environment
	Request pricing.PriceRequest
}

// PayoffInput is a validated payoff request with its range resolved
type PayoffInput struct {
	Scenario payoff.Scenario
	Axis     payoff.Axis
	Variable payoff.Variable
	Min      float64
	Max      float64
	Points   int
}

func decode(r *http.Request, v interface{}) error {
	if r.Method != http.MethodPost {
		return fmt.Errorf("%w: method not allowed: %s", pricing.ErrInvalidInput, r.Method)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode request: %v", pricing.ErrInvalidInput, err)
	}
	return nil
}

// ParseOptimizeRequest parses and validates an optimize request
func (s *RequestService) ParseOptimizeRequest(r *http.Request) (*OptimizeInput, error) {
	var req models.OptimizeRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	in := &OptimizeInput{
		Env: pricing.Environment{
			Spot:          req.Spot,
			Volatility:    req.Volatility,
			RiskFreeRate:  req.RiskFreeRate,
			DividendYield: req.DividendYield,
		},
		Prediction: optimizer.Prediction{TargetPrice: req.TargetPrice, Horizon: req.Horizon},
	}
	if err := in.Env.Validate(); err != nil {
		return nil, err
	}
	if err := in.Prediction.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// ParseQuoteRequest parses and validates a quote request
func (s *RequestService) ParseQuoteRequest(r *http.Request) (*QuoteInput, error) {
	var req models.QuoteRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	kind, err := pricing.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	in := &QuoteInput{
		Env: pricing.Environment{
			Spot:          req.Spot,
			Volatility:    req.Volatility,
			RiskFreeRate:  req.RiskFreeRate,
			DividendYield: req.DividendYield,
		},
		Request: pricing.PriceRequest{
			Kind:         kind,
			Strike:       req.Strike,
			TimeToExpiry: req.TimeToExpiry,
			Spot:         req.SpotOverride,
		},
	}
	if err := in.Env.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// ParsePayoffRequest parses a payoff request and fills in the default range
// and point count
func (s *RequestService) ParsePayoffRequest(r *http.Request) (*PayoffInput, error) {
	var req models.PayoffRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	kind, err := pricing.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	axis, err := payoff.ParseAxis(req.Axis)
	if err != nil {
		return nil, err
	}
	variable, err := payoff.ParseVariable(req.Variable)
	if err != nil {
		return nil, err
	}

	sc := payoff.Scenario{
		Env: pricing.Environment{
			Spot:          req.Environment.Spot,
			Volatility:    req.Environment.Volatility,
			RiskFreeRate:  req.Environment.RiskFreeRate,
			DividendYield: req.Environment.DividendYield,
		},
		Prediction:    optimizer.Prediction{TargetPrice: req.Prediction.TargetPrice, Horizon: req.Prediction.Horizon},
		Contract:      optimizer.OptionSpec{Kind: kind, Strike: req.Strike, Expiry: req.Expiry},
		EndVolatility: req.EndVol,
	}
	if err := sc.Env.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Prediction.Validate(); err != nil {
		return nil, err
	}
	if req.EndVol < 0 {
		return nil, fmt.Errorf("%w: end volatility must be non-negative, got %v", pricing.ErrInvalidInput, req.EndVol)
	}

	in := &PayoffInput{Scenario: sc, Axis: axis, Variable: variable, Points: req.Points}
	in.Min, in.Max = payoff.DefaultRange(sc, variable)
	if req.Min != nil {
		in.Min = *req.Min
	}
	if req.Max != nil {
		in.Max = *req.Max
	}
	if in.Points == 0 {
		in.Points = DefaultCurvePoints
	}
	if in.Points < 2 || in.Points > MaxCurvePoints {
		return nil, fmt.Errorf("%w: points must be between 2 and %d, got %d", pricing.ErrInvalidInput, MaxCurvePoints, in.Points)
	}
	return in, nil
}
