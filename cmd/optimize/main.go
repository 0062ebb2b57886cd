// Command optimize prints the contract with the best return for a price
// prediction, using the same search as the HTTP server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jwaldner/optionroi/internal/config"
	"github.com/jwaldner/optionroi/internal/logger"
	"github.com/jwaldner/optionroi/internal/optimizer"
	"github.com/jwaldner/optionroi/internal/pricing"
	"github.com/jwaldner/optionroi/internal/utils"
)

// Exit codes
const (
	exitOK = iota
	exitError
	exitInvalidInput
	exitInfeasible
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	spot := fs.Float64("spot", 0, "current price of the underlying")
	vol := fs.Float64("vol", 0, "annualised volatility, e.g. 0.3")
	rate := fs.Float64("rate", 0, "continuously compounded risk-free rate")
	div := fs.Float64("div", 0, "continuous dividend yield")
	target := fs.Float64("target", 0, "predicted price at the horizon")
	horizon := fs.Float64("horizon", 0, "years until the prediction is realised")
	fs.IntVar(&cfg.Optimizer.MaxIterations, "max-iterations", cfg.Optimizer.MaxIterations, "ascent iteration budget per branch")
	fs.Float64Var(&cfg.Optimizer.ConvergenceTolerance, "tolerance", cfg.Optimizer.ConvergenceTolerance, "projected gradient norm that stops the search")
	fs.Float64Var(&cfg.Optimizer.InitialStepSize, "step", cfg.Optimizer.InitialStepSize, "initial line search step")
	fs.Float64Var(&cfg.Optimizer.MinEntryPrice, "min-entry", cfg.Optimizer.MinEntryPrice, "entry prices at or below this are infeasible")
	fs.Float64Var(&cfg.Optimizer.MaxStrikeRatio, "max-strike-ratio", cfg.Optimizer.MaxStrikeRatio, "strike search bound as a multiple of spot and target")
	fs.Float64Var(&cfg.Optimizer.MaxExtraExpiry, "max-extra-expiry", cfg.Optimizer.MaxExtraExpiry, "years past the horizon the expiry search may reach")
	logLevel := fs.String("log-level", "warn", "error, warn, info, debug or verbose (logs go to stderr)")
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}

	if err := logger.InitWithConfig(*logLevel, ""); err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return exitError
	}

	opt, err := optimizer.New(cfg.Optimizer)
	if err != nil {
		return report(stderr, err)
	}

	env := pricing.Environment{Spot: *spot, Volatility: *vol, RiskFreeRate: *rate, DividendYield: *div}
	pred := optimizer.Prediction{TargetPrice: *target, Horizon: *horizon}
	res, err := opt.FindOptimalContract(env, pred)
	if err != nil {
		return report(stderr, err)
	}

	now := time.Now()
	fmt.Fprintf(stdout, "Prediction: $%.2f -> $%.2f in %.4f years\n\n", env.Spot, pred.TargetPrice, pred.Horizon)
	fmt.Fprintf(stdout, "%-5s %10s %12s %6s %10s %10s %10s\n", "KIND", "STRIKE", "EXPIRATION", "DAYS", "BUY", "SELL", "ROI")
	for _, rec := range []optimizer.Recommendation{res.Call, res.Put} {
		marker := " "
		if rec.Contract.Kind == res.Best {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%-4s%s %10.4f %12s %6d %10.2f %10.2f %9.2f%%\n",
			rec.Contract.Kind, marker,
			rec.Contract.Strike,
			utils.ExpirationDate(now, rec.Contract.Expiry),
			utils.DaysToExpiration(rec.Contract.Expiry),
			rec.Entry.Price, rec.Exit.Price, rec.ROI*100)
	}
	return exitOK
}

// report prints err and maps it to an exit code
func report(w io.Writer, err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		fmt.Fprintf(w, "invalid input: %v\n", err)
		return exitInvalidInput
	case errors.Is(err, pricing.ErrInfeasible):
		fmt.Fprintf(w, "no contract can be bought at a positive price: %v\n", err)
		return exitInfeasible
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return exitError
}
