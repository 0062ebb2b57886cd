// Package pricing values European options under the continuous-dividend
// Black-Scholes model and exposes exact partial derivatives with respect to
// strike and time to expiry.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects the payoff of an option contract.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts "call"/"put" (any case, singular or plural).
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return Call, fmt.Errorf("%w: option kind %q", ErrInvalidInput, s)
}

// Environment is the market snapshot every pricing call is made against.
type Environment struct {
	Spot          float64 `json:"spot" yaml:"spot"`
	Volatility    float64 `json:"volatility" yaml:"volatility"`
	RiskFreeRate  float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield" yaml:"dividend_yield"`
}

// Validate checks the field invariants of the environment.
func (e Environment) Validate() error {
	switch {
	case !finite(e.Spot) || e.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, e.Spot)
	case !finite(e.Volatility) || e.Volatility <= 0:
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidInput, e.Volatility)
	case !finite(e.RiskFreeRate):
		return fmt.Errorf("%w: risk-free rate must be finite, got %v", ErrInvalidInput, e.RiskFreeRate)
	case !finite(e.DividendYield) || e.DividendYield < 0:
		return fmt.Errorf("%w: dividend yield must be non-negative, got %v", ErrInvalidInput, e.DividendYield)
	}
	return nil
}

// WithSpot returns a copy of the environment priced at a different underlying.
func (e Environment) WithSpot(spot float64) Environment {
	e.Spot = spot
	return e
}

// Valuation holds an unrounded premium and its partial derivatives.
type Valuation struct {
	Value   float64
	DStrike float64
	DExpiry float64
}

// Evaluate prices one contract and both gradients in a single pass.
// At timeToExpiry == 0 it returns the intrinsic payoff and the one-sided
// limits of the gradients as time to expiry shrinks to zero.
func Evaluate(env Environment, kind Kind, strike, timeToExpiry float64) (Valuation, error) {
	if err := env.Validate(); err != nil {
		return Valuation{}, err
	}
	if !finite(strike) || strike <= 0 {
		return Valuation{}, fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, strike)
	}
	if !finite(timeToExpiry) || timeToExpiry < 0 {
		return Valuation{}, fmt.Errorf("%w: time to expiry must be non-negative, got %v", ErrInvalidInput, timeToExpiry)
	}
	if kind != Call && kind != Put {
		return Valuation{}, fmt.Errorf("%w: unknown option kind %d", ErrInvalidInput, int(kind))
	}

	var v Valuation
	if timeToExpiry == 0 {
		v = intrinsic(env, kind, strike)
	} else {
		v = blackScholes(env, kind, strike, timeToExpiry)
	}

	if !finite(v.Value) || !finite(v.DStrike) || !finite(v.DExpiry) {
		return Valuation{}, fmt.Errorf("%w: %s K=%v T=%v produced %+v", ErrNumericDegenerate, kind, strike, timeToExpiry, v)
	}
	return v, nil
}

// Value returns the unrounded premium of a contract.
func Value(env Environment, kind Kind, strike, timeToExpiry float64) (float64, error) {
	v, err := Evaluate(env, kind, strike, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

// StrikeGradient returns dV/dK.
func StrikeGradient(env Environment, kind Kind, strike, timeToExpiry float64) (float64, error) {
	v, err := Evaluate(env, kind, strike, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return v.DStrike, nil
}

// ExpiryGradient returns dV/dT where T is the time remaining to expiry.
func ExpiryGradient(env Environment, kind Kind, strike, timeToExpiry float64) (float64, error) {
	v, err := Evaluate(env, kind, strike, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return v.DExpiry, nil
}

func blackScholes(env Environment, kind Kind, strike, t float64) Valuation {
	s, q, r, vol := env.Spot, env.DividendYield, env.RiskFreeRate, env.Volatility

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/strike) + (r-q+0.5*vol*vol)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	spotPV := s * math.Exp(-q*t)
	strikeDF := math.Exp(-r * t)
	strikePV := strike * strikeDF
	decay := spotPV * normPDF(d1) * vol / (2 * sqrtT)

	if kind == Call {
		nd1, nd2 := normCDF(d1), normCDF(d2)
		return Valuation{
			Value:   math.Max(spotPV*nd1-strikePV*nd2, 0),
			DStrike: -strikeDF * nd2,
			DExpiry: decay + r*strikePV*nd2 - q*spotPV*nd1,
		}
	}

	nmd1, nmd2 := normCDF(-d1), normCDF(-d2)
	return Valuation{
		Value:   math.Max(strikePV*nmd2-spotPV*nmd1, 0),
		DStrike: strikeDF * nmd2,
		DExpiry: decay - r*strikePV*nmd2 + q*spotPV*nmd1,
	}
}

// intrinsic handles the expiry edge. Away from the money the gradient limits
// are exact; exactly at the money the strike slope takes the midpoint of its
// two one-sided values and the unbounded time-value term is dropped.
func intrinsic(env Environment, kind Kind, strike float64) Valuation {
	s, q, r := env.Spot, env.DividendYield, env.RiskFreeRate

	// weight is the limit of N(d2) (calls) or N(-d2) (puts).
	var weight float64
	switch {
	case s == strike:
		weight = 0.5
	case (kind == Call) == (s > strike):
		weight = 1
	}

	if kind == Call {
		return Valuation{
			Value:   math.Max(s-strike, 0),
			DStrike: -weight,
			DExpiry: weight * (r*strike - q*s),
		}
	}
	return Valuation{
		Value:   math.Max(strike-s, 0),
		DStrike: weight,
		DExpiry: weight * (q*s - r*strike),
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
