package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwaldner/optionroi/internal/payoff"
	"github.com/jwaldner/optionroi/internal/pricing"
)

func newPost(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseOptimizeRequest(t *testing.T) {
	s := NewRequestService()
	in, err := s.ParseOptimizeRequest(newPost(`{"spot":15,"volatility":0.5,"risk_free_rate":0.04,"target_price":15,"horizon":0.25}`))
	if err != nil {
		t.Fatalf("ParseOptimizeRequest: %v", err)
	}
	if in.Env.Spot != 15 || in.Env.Volatility != 0.5 || in.Prediction.Horizon != 0.25 {
		t.Errorf("parsed %+v", in)
	}

	if _, err := s.ParseOptimizeRequest(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, pricing.ErrInvalidInput) {
		t.Errorf("GET: err = %v", err)
	}
	if _, err := s.ParseOptimizeRequest(newPost(`{"spot":15,"volatility":0.5,"risk_free_rate":0.04,"dividend_yield":-0.1,"target_price":15,"horizon":0.25}`)); !errors.Is(err, pricing.ErrInvalidInput) {
		t.Errorf("negative dividend: err = %v", err)
	}
}

func TestParseQuoteRequest(t *testing.T) {
	s := NewRequestService()
	in, err := s.ParseQuoteRequest(newPost(`{"spot":15,"volatility":0.5,"kind":"Puts","strike":14,"time_to_expiry":0.5,"spot_override":13}`))
	if err != nil {
		t.Fatalf("ParseQuoteRequest: %v", err)
	}
	if in.Request.Kind != pricing.Put || in.Request.Spot != 13 || in.Request.Strike != 14 {
		t.Errorf("parsed %+v", in.Request)
	}
}

func TestParsePayoffRequestDefaults(t *testing.T) {
	s := NewRequestService()
	body := `{"environment":{"spot":100,"volatility":0.3},"prediction":{"target_price":110,"horizon":0.25},
		"kind":"call","strike":100,"expiry":0.5,"axis":"nominal","variable":"end_time"}`
	in, err := s.ParsePayoffRequest(newPost(body))
	if err != nil {
		t.Fatalf("ParsePayoffRequest: %v", err)
	}
	if in.Axis != payoff.Nominal || in.Variable != payoff.EndTime {
		t.Errorf("axis %s variable %s", in.Axis, in.Variable)
	}
	if in.Min != 0 || in.Max != 0.5 || in.Points != DefaultCurvePoints {
		t.Errorf("defaults: [%v, %v] x %d", in.Min, in.Max, in.Points)
	}

	ranged := strings.Replace(body, `"variable":"end_time"`, `"variable":"end_time","min":0.1,"max":0.2,"points":5`, 1)
	if in, err = s.ParsePayoffRequest(newPost(ranged)); err != nil || in.Min != 0.1 || in.Max != 0.2 || in.Points != 5 {
		t.Errorf("explicit range: %+v, %v", in, err)
	}
}

func TestParsePayoffRequestRejects(t *testing.T) {
	s := NewRequestService()
	base := `{"environment":{"spot":100,"volatility":0.3},"prediction":{"target_price":110,"horizon":0.25},"kind":"call","strike":100,"expiry":0.5,"axis":"roi","variable":"strike"`
	tests := map[string]string{
		"bad axis":     strings.Replace(base, `"roi"`, `"delta"`, 1) + `}`,
		"bad variable": strings.Replace(base, `"variable":"strike"`, `"variable":"theta"`, 1) + `}`,
		"bad kind":     strings.Replace(base, `"call"`, `"swap"`, 1) + `}`,
		"too many":     base + `,"points":1000000}`,
		"one point":    base + `,"points":1}`,
		"neg end vol":  base + `,"end_vol":-0.1}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.ParsePayoffRequest(newPost(body)); !errors.Is(err, pricing.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
