package optimizer

import (
	"fmt"

	"github.com/jwaldner/optionroi/internal/pricing"
)

// Objective is the unrounded ROI of buying a contract now and selling it at
// the horizon, as a function of strike and expiry.
type Objective struct {
	Kind     pricing.Kind
	Start    pricing.Environment // entry leg, priced at the current spot
	End      pricing.Environment // exit leg, priced at the ending price
	Horizon  float64
	MinEntry float64
}

// NewObjective builds the objective for a prediction where only the price of
// the underlying changes by the horizon.
func NewObjective(env pricing.Environment, pred Prediction, kind pricing.Kind, minEntry float64) (*Objective, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}
	return &Objective{
		Kind:     kind,
		Start:    env,
		End:      env.WithSpot(pred.TargetPrice),
		Horizon:  pred.Horizon,
		MinEntry: minEntry,
	}, nil
}

// Legs holds both priced legs at one (strike, expiry).
type Legs struct {
	Entry pricing.Valuation
	Exit  pricing.Valuation
}

// Legs prices the entry leg with expiry remaining and the exit leg with
// expiry-horizon remaining.
func (o *Objective) Legs(strike, expiry float64) (Legs, error) {
	if expiry < o.Horizon {
		return Legs{}, fmt.Errorf("%w: expiry %v before horizon %v", pricing.ErrInvalidInput, expiry, o.Horizon)
	}
	entry, err := pricing.Evaluate(o.Start, o.Kind, strike, expiry)
	if err != nil {
		return Legs{}, fmt.Errorf("entry leg: %w", err)
	}
	exit, err := pricing.Evaluate(o.End, o.Kind, strike, expiry-o.Horizon)
	if err != nil {
		return Legs{}, fmt.Errorf("exit leg: %w", err)
	}
	return Legs{Entry: entry, Exit: exit}, nil
}

// ROI returns (exit-entry)/entry. An entry price at or below MinEntry makes
// the ratio meaningless and is reported as ErrNumericDegenerate.
func (o *Objective) ROI(strike, expiry float64) (float64, error) {
	legs, err := o.Legs(strike, expiry)
	if err != nil {
		return 0, err
	}
	if err := o.checkEntry(legs, strike, expiry); err != nil {
		return 0, err
	}
	return roi(legs.Entry.Value, legs.Exit.Value), nil
}

// Gradient returns ROI and its exact partials with respect to strike and
// expiry, combining both legs with the quotient rule.
func (o *Objective) Gradient(strike, expiry float64) (value, dStrike, dExpiry float64, err error) {
	legs, err := o.Legs(strike, expiry)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := o.checkEntry(legs, strike, expiry); err != nil {
		return 0, 0, 0, err
	}

	entry, exit := legs.Entry, legs.Exit
	sq := entry.Value * entry.Value
	value = roi(entry.Value, exit.Value)
	dStrike = (exit.DStrike*entry.Value - exit.Value*entry.DStrike) / sq
	dExpiry = (exit.DExpiry*entry.Value - exit.Value*entry.DExpiry) / sq
	return value, dStrike, dExpiry, nil
}

func (o *Objective) checkEntry(legs Legs, strike, expiry float64) error {
	if legs.Entry.Value <= o.MinEntry {
		return fmt.Errorf("%w: %s K=%v T=%v entry price %v at or below %v",
			pricing.ErrNumericDegenerate, o.Kind, strike, expiry, legs.Entry.Value, o.MinEntry)
	}
	return nil
}

func roi(entry, exit float64) float64 {
	return (exit - entry) / entry
}
