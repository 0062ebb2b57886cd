// Package payoff evaluates how a chosen contract's return responds when one
// variable of the scenario is moved, for drawing payoff curves and sliders.
package payoff

import (
	"errors"
	"fmt"

	"github.com/jwaldner/optionroi/internal/optimizer"
	"github.com/jwaldner/optionroi/internal/pricing"
)

// Variable names the scenario input placed on the x axis.
type Variable string

const (
	Strike   Variable = "strike"
	Expiry   Variable = "expiry"
	EndPrice Variable = "end_price"
	EndTime  Variable = "end_time"
	EndVol   Variable = "end_vol"
)

// Variables lists every adjustable variable in display order.
func Variables() []Variable {
	return []Variable{Strike, Expiry, EndPrice, EndTime, EndVol}
}

// Axis selects what is plotted on the y axis.
type Axis string

const (
	ROI     Axis = "roi"
	Nominal Axis = "nominal"
)

// ParseVariable validates a variable name.
func ParseVariable(s string) (Variable, error) {
	for _, v := range Variables() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown variable %q", pricing.ErrInvalidInput, s)
}

// ParseAxis validates an axis name.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case ROI, Nominal:
		return Axis(s), nil
	}
	return "", fmt.Errorf("%w: unknown axis %q", pricing.ErrInvalidInput, s)
}

// Scenario is a contract held from now until the end of a prediction.
// EndVolatility of zero means volatility is unchanged at the end.
type Scenario struct {
	Env           pricing.Environment  `json:"environment"`
	Prediction    optimizer.Prediction `json:"prediction"`
	Contract      optimizer.OptionSpec `json:"contract"`
	EndVolatility float64              `json:"end_volatility,omitempty"`
}

func (s Scenario) endVol() float64 {
	if s.EndVolatility == 0 {
		return s.Env.Volatility
	}
	return s.EndVolatility
}

// Get returns the current value of v.
func (s Scenario) Get(v Variable) float64 {
	switch v {
	case Strike:
		return s.Contract.Strike
	case Expiry:
		return s.Contract.Expiry
	case EndPrice:
		return s.Prediction.TargetPrice
	case EndTime:
		return s.Prediction.Horizon
	case EndVol:
		return s.endVol()
	}
	return 0
}

// With returns a copy of s with v set to x.
func (s Scenario) With(v Variable, x float64) Scenario {
	switch v {
	case Strike:
		s.Contract.Strike = x
	case Expiry:
		s.Contract.Expiry = x
	case EndPrice:
		s.Prediction.TargetPrice = x
	case EndTime:
		s.Prediction.Horizon = x
	case EndVol:
		s.EndVolatility = x
	}
	return s
}

// DefaultRange is the initial slider range for v.
func DefaultRange(s Scenario, v Variable) (lo, hi float64) {
	switch v {
	case Strike:
		return 0, 2 * s.Contract.Strike
	case Expiry:
		return s.Prediction.Horizon, 2 * s.Prediction.Horizon
	case EndPrice:
		return 0, 2 * s.Prediction.TargetPrice
	case EndTime:
		return 0, s.Contract.Expiry
	case EndVol:
		return 0, 2 * s.endVol()
	}
	return 0, 0
}

// ValidRange is the widest range of v that still describes a sensible trade.
func ValidRange(s Scenario, v Variable) (lo, hi float64) {
	const unbounded = 1e12
	switch v {
	case Expiry:
		return s.Prediction.Horizon, unbounded
	case EndTime:
		return 0, s.Contract.Expiry
	case Strike, EndPrice, EndVol:
		return 0, unbounded
	}
	return 0, 0
}

// withDefaults pins an unset ending volatility to the starting one, so a
// later zero on the end_vol axis means zero rather than unchanged.
func (s Scenario) withDefaults() Scenario {
	s.EndVolatility = s.endVol()
	return s
}

// Evaluate returns the y value of the scenario itself.
func Evaluate(s Scenario, axis Axis, minEntry float64) (float64, error) {
	return evaluate(s.withDefaults(), axis, minEntry)
}

func evaluate(s Scenario, axis Axis, minEntry float64) (float64, error) {
	end := s.Env.WithSpot(s.Prediction.TargetPrice)
	end.Volatility = s.EndVolatility
	obj := &optimizer.Objective{
		Kind:     s.Contract.Kind,
		Start:    s.Env,
		End:      end,
		Horizon:  s.Prediction.Horizon,
		MinEntry: minEntry,
	}
	if s.Prediction.Horizon < 0 {
		return 0, fmt.Errorf("%w: end time must be non-negative, got %v", pricing.ErrInvalidInput, s.Prediction.Horizon)
	}

	switch axis {
	case ROI:
		return obj.ROI(s.Contract.Strike, s.Contract.Expiry)
	case Nominal:
		legs, err := obj.Legs(s.Contract.Strike, s.Contract.Expiry)
		if err != nil {
			return 0, err
		}
		return legs.Exit.Value, nil
	}
	return 0, fmt.Errorf("%w: unknown axis %q", pricing.ErrInvalidInput, axis)
}

// Point is one sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve samples the y axis at n evenly spaced values of v across [lo, hi].
// Samples where the trade is undefined, such as a zero strike or an entry
// that prices to nothing, are left out.
func Curve(s Scenario, axis Axis, v Variable, lo, hi float64, n int, minEntry float64) ([]Point, error) {
	if _, err := ParseAxis(string(axis)); err != nil {
		return nil, err
	}
	if _, err := ParseVariable(string(v)); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", pricing.ErrInvalidInput, n)
	}
	if !(lo <= hi) {
		return nil, fmt.Errorf("%w: empty range [%v, %v]", pricing.ErrInvalidInput, lo, hi)
	}

	s = s.withDefaults()
	points := make([]Point, 0, n)
	width := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*width
		y, err := evaluate(s.With(v, x), axis, minEntry)
		if errors.Is(err, pricing.ErrInvalidInput) || errors.Is(err, pricing.ErrNumericDegenerate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}
