package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/jwaldner/optionroi/internal/pricing"
)

const (
	// armijo is the sufficient-increase fraction of the predicted gain.
	armijo = 1e-4
	// maxBacktracks bounds the step halvings tried per iteration.
	maxBacktracks = 60
	// maxStepScale caps step growth relative to the initial step size.
	maxStepScale = 1 << 40
	// seedSteps is the number of geometric steps between the target and
	// spot strikes tried as starting points.
	seedSteps = 32
)

type point struct {
	strike float64
	expiry float64
}

// ascent runs projected gradient ascent with backtracking line search on a
// single objective. The step size doubles after every accepted step and is
// halved until the Armijo condition holds, so runs are fully deterministic.
//
// The search box is strike in [lo/ratio, ratio*hi] where lo and hi are the
// smaller and larger of spot and target, and expiry in
// [horizon, horizon+MaxExtraExpiry].
type ascent struct {
	obj       *Objective
	cfg       Config
	minStrike float64
	maxStrike float64
	maxExpiry float64
}

func newAscent(obj *Objective, cfg Config) *ascent {
	spot, target := obj.Start.Spot, obj.End.Spot
	return &ascent{
		obj:       obj,
		cfg:       cfg,
		minStrike: math.Min(spot, target) / cfg.MaxStrikeRatio,
		maxStrike: math.Max(spot, target) * cfg.MaxStrikeRatio,
		maxExpiry: obj.Horizon + cfg.MaxExtraExpiry,
	}
}

// project clamps a point onto the search box.
func (a *ascent) project(p point) point {
	p.strike = math.Min(math.Max(p.strike, a.minStrike), a.maxStrike)
	p.expiry = math.Min(math.Max(p.expiry, a.obj.Horizon), a.maxExpiry)
	return p
}

// seed picks the starting point: of the strikes stepping geometrically from
// the target price to spot at expiry = horizon, the one with the highest ROI
// among those whose entry prices above MinEntry. Ties keep the strike
// closest to the target. It fails with ErrInfeasible only when every
// candidate, spot included, is unpriceable.
func (a *ascent) seed() (point, float64, error) {
	spot, target := a.obj.Start.Spot, a.obj.End.Spot
	var (
		best    point
		bestROI = math.Inf(-1)
		lastErr error
	)
	for i := 0; i <= seedSteps; i++ {
		strike := target * math.Pow(spot/target, float64(i)/seedSteps)
		if i == seedSteps {
			strike = spot
		}
		p := a.project(point{strike: strike, expiry: a.obj.Horizon})
		f, err := a.obj.ROI(p.strike, p.expiry)
		if errors.Is(err, pricing.ErrNumericDegenerate) {
			lastErr = err
			continue
		}
		if err != nil {
			return p, 0, err
		}
		if f > bestROI {
			best, bestROI = p, f
		}
	}
	if math.IsInf(bestROI, -1) {
		return point{strike: spot, expiry: a.obj.Horizon}, 0,
			fmt.Errorf("%w: %s has no priceable strike between target %v and spot %v: %v", pricing.ErrInfeasible, a.obj.Kind, target, spot, lastErr)
	}
	return best, bestROI, nil
}

// run climbs from the seed and returns the best point visited with its ROI.
func (a *ascent) run() (point, float64, Trace, error) {
	x, _, err := a.seed()
	trace := Trace{Seed: OptionSpec{Kind: a.obj.Kind, Strike: x.strike, Expiry: x.expiry}}
	if err != nil {
		return x, 0, trace, err
	}

	f, gK, gT, err := a.obj.Gradient(x.strike, x.expiry)
	if err != nil {
		return x, 0, trace, err
	}
	trace.SeedROI = f
	trace.Evaluations = 1

	step := a.cfg.InitialStepSize
	maxStep := a.cfg.InitialStepSize * maxStepScale

	for {
		// Unit-step projected gradient: zero exactly at a constrained stationary point.
		pg := a.project(point{x.strike + gK, x.expiry + gT})
		trace.GradientNorm = math.Hypot(pg.strike-x.strike, pg.expiry-x.expiry)
		if trace.GradientNorm < a.cfg.ConvergenceTolerance {
			trace.Converged, trace.StopReason = true, StopGradient
			break
		}
		if trace.Iterations >= a.cfg.MaxIterations {
			trace.StopReason = StopMaxIterations
			break
		}

		next, ok, err := a.lineSearch(x, f, gK, gT, &step, &trace)
		if err != nil {
			return x, f, trace, err
		}
		if !ok {
			trace.Converged, trace.StopReason = true, StopStalled
			break
		}

		fNext, gKNext, gTNext, err := a.obj.Gradient(next.strike, next.expiry)
		if err != nil {
			return x, f, trace, err
		}
		x, f, gK, gT = next, fNext, gKNext, gTNext
		trace.Iterations++
		step = math.Min(step*2, maxStep)
	}

	if trace.Converged && a.pressesBound(x, gK, gT) {
		trace.Converged, trace.StopReason = false, StopBound
	}
	return x, f, trace, nil
}

// pressesBound reports whether x sits on a configured edge of the search box
// with ROI still rising beyond it. The expiry = horizon edge is a real
// constraint of the trade, not a search limit, and is not counted.
func (a *ascent) pressesBound(x point, gK, gT float64) bool {
	return (x.strike <= a.minStrike && gK < 0) ||
		(x.strike >= a.maxStrike && gK > 0) ||
		(x.expiry >= a.maxExpiry && gT > 0)
}

// lineSearch backtracks from *step until the projected step gives sufficient
// increase. Candidates whose entry leg prices to (numerically) zero are
// treated as infeasible and shrink the step like any other rejection.
func (a *ascent) lineSearch(x point, f, gK, gT float64, step *float64, trace *Trace) (point, bool, error) {
	for i := 0; i < maxBacktracks; i++ {
		cand := a.project(point{x.strike + *step*gK, x.expiry + *step*gT})
		if cand == x {
			return x, false, nil
		}
		if math.IsInf(cand.strike, 0) || math.IsInf(cand.expiry, 0) {
			*step /= 2
			continue
		}

		fc, err := a.obj.ROI(cand.strike, cand.expiry)
		trace.Evaluations++
		if errors.Is(err, pricing.ErrNumericDegenerate) {
			*step /= 2
			continue
		}
		if err != nil {
			return x, false, err
		}

		gain := gK*(cand.strike-x.strike) + gT*(cand.expiry-x.expiry)
		if fc > f && fc >= f+armijo*gain {
			return cand, true, nil
		}
		*step /= 2
	}
	return x, false, nil
}
