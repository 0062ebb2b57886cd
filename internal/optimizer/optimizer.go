// Package optimizer searches for the single option contract whose purchase
// today and sale at the prediction horizon maximises return on investment.
package optimizer

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jwaldner/optionroi/internal/logger"
	"github.com/jwaldner/optionroi/internal/pricing"
)

// Optimizer holds validated hyperparameters; it has no mutable state and is
// safe for concurrent use.
type Optimizer struct {
	cfg Config
}

// New validates cfg and returns an Optimizer.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer config: %w", err)
	}
	return &Optimizer{cfg: cfg}, nil
}

// FindOptimalContract runs a search with DefaultConfig.
func FindOptimalContract(env pricing.Environment, pred Prediction) (Result, error) {
	o, err := New(DefaultConfig())
	if err != nil {
		return Result{}, err
	}
	return o.FindOptimalContract(env, pred)
}

// Config returns the hyperparameters in use.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// FindOptimalContract searches the Call and Put branches independently and
// concurrently. Best is the branch with the higher unrounded ROI; ties go to
// the call.
func (o *Optimizer) FindOptimalContract(env pricing.Environment, pred Prediction) (Result, error) {
	if err := env.Validate(); err != nil {
		return Result{}, err
	}
	if err := pred.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	var g errgroup.Group
	g.Go(func() error {
		rec, err := o.Optimize(env, pred, pricing.Call)
		res.Call = rec
		return err
	})
	g.Go(func() error {
		rec, err := o.Optimize(env, pred, pricing.Put)
		res.Put = rec
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res.Best = pricing.Call
	if res.Put.ModelROI > res.Call.ModelROI {
		res.Best = pricing.Put
	}
	return res, nil
}

// Optimize runs the ascent for one option kind, seeded on the strikes
// between the target price and spot at expiry = horizon, and builds the
// rounded recommendation.
func (o *Optimizer) Optimize(env pricing.Environment, pred Prediction, kind pricing.Kind) (Recommendation, error) {
	obj, err := NewObjective(env, pred, kind, o.cfg.MinEntryPrice)
	if err != nil {
		return Recommendation{}, err
	}

	best, modelROI, trace, err := newAscent(obj, o.cfg).run()
	if err != nil {
		return Recommendation{}, fmt.Errorf("optimize %s: %w", kind, err)
	}
	logger.Debug.Printf("%s ascent stopped (%s) after %d iterations: K=%.6f T=%.6f roi=%.6f |pg|=%.3g",
		kind, trace.StopReason, trace.Iterations, best.strike, best.expiry, modelROI, trace.GradientNorm)

	rec, err := Recommend(obj, OptionSpec{Kind: kind, Strike: best.strike, Expiry: best.expiry})
	if err != nil {
		return Recommendation{}, fmt.Errorf("optimize %s: %w", kind, err)
	}
	rec.Search = trace
	return rec, nil
}

// Recommend prices a converged contract for display: the entry is quoted as
// a buy (rounded up), the exit as a sell (rounded down), and ROI is taken
// from the rounded quotes.
func Recommend(obj *Objective, spec OptionSpec) (Recommendation, error) {
	legs, err := obj.Legs(spec.Strike, spec.Expiry)
	if err != nil {
		return Recommendation{}, err
	}
	if err := obj.checkEntry(legs, spec.Strike, spec.Expiry); err != nil {
		return Recommendation{}, err
	}

	entry := pricing.RoundQuote(legs.Entry.Value, pricing.Buy)
	exit := pricing.RoundQuote(legs.Exit.Value, pricing.Sell)
	return Recommendation{
		Contract:   spec,
		Entry:      entry,
		Exit:       exit,
		ROI:        roi(entry.Price, exit.Price),
		ModelEntry: legs.Entry.Value,
		ModelExit:  legs.Exit.Value,
		ModelROI:   roi(legs.Entry.Value, legs.Exit.Value),
	}, nil
}
