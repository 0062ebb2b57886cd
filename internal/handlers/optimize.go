package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jwaldner/optionroi/internal/audit"
	"github.com/jwaldner/optionroi/internal/cache"
	"github.com/jwaldner/optionroi/internal/logger"
	"github.com/jwaldner/optionroi/internal/models"
	"github.com/jwaldner/optionroi/internal/optimizer"
	"github.com/jwaldner/optionroi/internal/payoff"
	"github.com/jwaldner/optionroi/internal/pricing"
	"github.com/jwaldner/optionroi/internal/services"
	"github.com/jwaldner/optionroi/internal/utils"
)

// OptimizerHandler serves the optimize, quote and payoff endpoints - HTTP layer only
type OptimizerHandler struct {
	optimizer *optimizer.Optimizer
	requests  *services.RequestService
	store     cache.ResultStore
	auditor   audit.Auditor
	now       func() time.Time
}

// NewOptimizerHandler wires the handler. store may be nil to disable caching
// and auditor may be nil to disable auditing.
func NewOptimizerHandler(opt *optimizer.Optimizer, store cache.ResultStore, auditor audit.Auditor) *OptimizerHandler {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &OptimizerHandler{
		optimizer: opt,
		requests:  services.NewRequestService(),
		store:     store,
		auditor:   auditor,
		now:       time.Now,
	}
}

// Register mounts every endpoint on r
func (h *OptimizerHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/optimize", h.OptimizeHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/quote", h.QuoteHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/payoff", h.PayoffHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
}

// OptimizeHandler finds the best call and put for a prediction
func (h *OptimizerHandler) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	startTime := time.Now()
	requestID := uuid.New().String()

	in, err := h.requests.ParseOptimizeRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, cached, err := h.findOptimalContract(r.Context(), in)
	if err != nil {
		logger.Warn.Printf("⚠️ optimize %s failed: %v", requestID, err)
		writeError(w, err)
		return
	}

	now := h.now()
	response := models.OptimizeResponse{
		RequestID: requestID,
		Best:      res.Best.String(),
		Call:      formatRecommendation(res.Call, now),
		Put:       formatRecommendation(res.Put, now),
		Meta: models.ResponseMetadata{
			Timestamp:      now.Format(time.RFC3339),
			ProcessingTime: time.Since(startTime).Seconds(),
			Cached:         cached,
			CallIterations: res.Call.Search.Iterations,
			PutIterations:  res.Put.Search.Iterations,
			CallConverged:  res.Call.Search.Converged,
			PutConverged:   res.Put.Search.Converged,
		},
	}

	if err := h.auditor.Record(requestID, map[string]interface{}{
		"inputs":   in,
		"config":   h.optimizer.Config(),
		"result":   res,
		"response": response,
	}); err != nil {
		logger.Warn.Printf("⚠️ audit %s: %v", requestID, err)
	}

	logger.Info.Printf("✅ optimize %s: best=%s roi=%.4f in %v (cached=%t)",
		requestID, res.Best, res.Recommended().ROI, time.Since(startTime), cached)
	writeJSON(w, http.StatusOK, response)
}

// findOptimalContract consults the cache before searching. Cache failures
// are logged and never fail the request.
func (h *OptimizerHandler) findOptimalContract(ctx context.Context, in *services.OptimizeInput) (optimizer.Result, bool, error) {
	var key string
	if h.store != nil {
		key = cache.Key(in.Env, in.Prediction, h.optimizer.Config())
		res, ok, err := h.store.Get(ctx, key)
		if err != nil {
			logger.Warn.Printf("⚠️ cache get: %v", err)
		} else if ok {
			return res, true, nil
		}
	}

	res, err := h.optimizer.FindOptimalContract(in.Env, in.Prediction)
	if err != nil {
		return optimizer.Result{}, false, err
	}

	if h.store != nil {
		if err := h.store.Set(ctx, key, res); err != nil {
			logger.Warn.Printf("⚠️ cache set: %v", err)
		}
	}
	return res, false, nil
}

// QuoteHandler prices a single contract
func (h *OptimizerHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	in, err := h.requests.ParseQuoteRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	price, err := pricing.PriceOption(in.Env, in.Request)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuoteResponse{
		Value: price.Value,
		Buy:   price.Buy.Price,
		Sell:  price.Sell.Price,
	})
}

// PayoffHandler samples ROI or exit value across one scenario variable
func (h *OptimizerHandler) PayoffHandler(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	in, err := h.requests.ParsePayoffRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	minEntry := h.optimizer.Config().MinEntryPrice
	current, err := payoff.Evaluate(in.Scenario, in.Axis, minEntry)
	if err != nil {
		writeError(w, err)
		return
	}
	points, err := payoff.Curve(in.Scenario, in.Axis, in.Variable, in.Min, in.Max, in.Points, minEntry)
	if err != nil {
		writeError(w, err)
		return
	}

	response := models.PayoffResponse{
		Variable: string(in.Variable),
		Axis:     string(in.Axis),
		Min:      in.Min,
		Max:      in.Max,
		Points:   make([]models.PayoffPoint, len(points)),
		Current:  models.PayoffPoint{X: in.Scenario.Get(in.Variable), Y: current},
	}
	for i, p := range points {
		response.Points[i] = models.PayoffPoint{X: p.X, Y: p.Y}
	}
	writeJSON(w, http.StatusOK, response)
}

// HealthHandler reports liveness
func (h *OptimizerHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"cache":     h.store != nil,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// Formatter functions for dual format response
func formatCurrency(value float64) models.FieldValue {
	return models.FieldValue{
		Raw:     value,
		Display: fmt.Sprintf("$%.2f", value),
		Type:    "currency",
	}
}

func formatPercentage(value float64) models.FieldValue {
	return models.FieldValue{
		Raw:     value,
		Display: fmt.Sprintf("%.2f%%", value*100),
		Type:    "percentage",
	}
}

func formatInteger(value int) models.FieldValue {
	return models.FieldValue{
		Raw:     value,
		Display: fmt.Sprintf("%d", value),
		Type:    "integer",
	}
}

func formatText(value string) models.FieldValue {
	return models.FieldValue{
		Raw:     value,
		Display: value,
		Type:    "text",
	}
}

func formatYears(value float64) models.FieldValue {
	return models.FieldValue{
		Raw:     value,
		Display: fmt.Sprintf("%.4f y", value),
		Type:    "years",
	}
}

// formatRecommendation converts a Recommendation to formatted dual-value fields
func formatRecommendation(rec optimizer.Recommendation, now time.Time) models.FormattedContract {
	return models.FormattedContract{
		"kind":               formatText(rec.Contract.Kind.String()),
		"strike":             formatCurrency(rec.Contract.Strike),
		"expiry":             formatYears(rec.Contract.Expiry),
		"expiration":         formatText(utils.ExpirationDate(now, rec.Contract.Expiry)),
		"days_to_expiration": formatInteger(utils.DaysToExpiration(rec.Contract.Expiry)),
		"entry_price":        formatCurrency(rec.Entry.Price),
		"exit_price":         formatCurrency(rec.Exit.Price),
		"roi":                formatPercentage(rec.ROI),
		"model_roi":          formatPercentage(rec.ModelROI),
	}
}

// preflight answers CORS preflight requests and sets the shared headers
func preflight(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("❌ JSON encoding failed: %v", err)
	}
}

// Error codes returned in ErrorResponse.Error
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInfeasible        = "INFEASIBLE"
	CodeNumericDegenerate = "NUMERIC_DEGENERATE"
	CodeInternal          = "INTERNAL"
)

// statusFor maps the pricing error kinds onto HTTP statuses
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, pricing.ErrInfeasible):
		return http.StatusUnprocessableEntity, CodeInfeasible
	case errors.Is(err, pricing.ErrNumericDegenerate):
		return http.StatusUnprocessableEntity, CodeNumericDegenerate
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("❌ %v", err)
	}
	writeJSON(w, status, models.ErrorResponse{Error: code, Message: err.Error()})
}
