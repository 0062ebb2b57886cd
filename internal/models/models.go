package models

// FieldValue represents a field with both raw data and formatted display
type FieldValue struct {
	Raw     interface{} `json:"raw"`     // For sorting: 1234.56
	Display string      `json:"display"` // For UI: "$1,234.56"
	Type    string      `json:"type"`    // For CSS: "currency"
}

// FormattedContract is one branch of an optimize response, keyed by field name
type FormattedContract map[string]FieldValue

// OptimizeRequest is the body of POST /api/optimize
type OptimizeRequest struct {
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
	TargetPrice   float64 `json:"target_price"`
	Horizon       float64 `json:"horizon"` // years
}

// OptimizeResponse carries the recommended contract plus both branches
type OptimizeResponse struct {
	RequestID string            `json:"request_id"`
	Best      string            `json:"best"`
	Call      FormattedContract `json:"call"`
	Put       FormattedContract `json:"put"`
	Meta      ResponseMetadata  `json:"meta"`
}

type ResponseMetadata struct {
	Timestamp      string  `json:"timestamp"`
	ProcessingTime float64 `json:"processing_time"` // seconds
	Cached         bool    `json:"cached"`
	CallIterations int     `json:"call_iterations"`
	PutIterations  int     `json:"put_iterations"`
	CallConverged  bool    `json:"call_converged"`
	PutConverged   bool    `json:"put_converged"`
}

// QuoteRequest is the body of POST /api/quote
type QuoteRequest struct {
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
	Kind          string  `json:"kind"` // "call" or "put"
	Strike        float64 `json:"strike"`
	TimeToExpiry  float64 `json:"time_to_expiry"` // years
	SpotOverride  float64 `json:"spot_override,omitempty"`
}

type QuoteResponse struct {
	Value float64 `json:"value"`
	Buy   float64 `json:"buy"`
	Sell  float64 `json:"sell"`
}

// EnvironmentInput mirrors the market fields shared by every request
type EnvironmentInput struct {
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
}

type PredictionInput struct {
	TargetPrice float64 `json:"target_price"`
	Horizon     float64 `json:"horizon"`
}

// PayoffRequest is the body of POST /api/payoff. Min, Max and Points are
// optional; missing bounds fall back to the variable's default range.
type PayoffRequest struct {
	Environment EnvironmentInput `json:"environment"`
	Prediction  PredictionInput  `json:"prediction"`
	Kind        string           `json:"kind"`
	Strike      float64          `json:"strike"`
	Expiry      float64          `json:"expiry"`
	EndVol      float64          `json:"end_vol,omitempty"`
	Axis        string           `json:"axis"`
	Variable    string           `json:"variable"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Points      int              `json:"points,omitempty"`
}

type PayoffPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PayoffResponse struct {
	Variable string        `json:"variable"`
	Axis     string        `json:"axis"`
	Min      float64       `json:"min"`
	Max      float64       `json:"max"`
	Points   []PayoffPoint `json:"points"`
	Current  PayoffPoint   `json:"current"`
}

// ErrorResponse is written for every non-2xx API reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
