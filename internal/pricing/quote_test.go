package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestRoundQuoteDirection(t *testing.T) {
	tests := []struct {
		value    float64
		wantBuy  float64
		wantSell float64
	}{
		{0.8312, 0.84, 0.83},
		{3.1299, 3.13, 3.12},
		{0.84, 0.84, 0.84},
		{0, 0, 0},
		{12.005, 12.01, 12},
		{0.0001, 0.01, 0},
	}
	for _, tt := range tests {
		buy := RoundQuote(tt.value, Buy)
		sell := RoundQuote(tt.value, Sell)
		if buy.Price != tt.wantBuy || buy.Direction != Buy {
			t.Errorf("RoundQuote(%v, Buy) = %+v, want %v", tt.value, buy, tt.wantBuy)
		}
		if sell.Price != tt.wantSell || sell.Direction != Sell {
			t.Errorf("RoundQuote(%v, Sell) = %+v, want %v", tt.value, sell, tt.wantSell)
		}
	}
}

func TestRoundQuoteWithinOneCent(t *testing.T) {
	for p := 0.0; p < 25; p += 0.0137 {
		buy := RoundQuote(p, Buy).Price
		sell := RoundQuote(p, Sell).Price
		if buy < p || buy-p > 0.01+1e-12 {
			t.Errorf("buy %v for %v outside [p, p+0.01]", buy, p)
		}
		if sell > p || p-sell > 0.01+1e-12 {
			t.Errorf("sell %v for %v outside [p-0.01, p]", sell, p)
		}
	}
}

func TestPriceOptionSpotOverride(t *testing.T) {
	env := Environment{Spot: 15, Volatility: 0.5, RiskFreeRate: 0.04}

	atSpot, err := PriceOption(env, PriceRequest{Kind: Call, Strike: 12, TimeToExpiry: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	direct, _ := Value(env, Call, 12, 0.5)
	if atSpot.Value != direct {
		t.Errorf("value = %v, want %v", atSpot.Value, direct)
	}

	exit, err := PriceOption(env, PriceRequest{Kind: Call, Strike: 12, TimeToExpiry: 0, Spot: 20})
	if err != nil {
		t.Fatal(err)
	}
	if exit.Value != 8 || exit.Buy.Price != 8 || exit.Sell.Price != 8 {
		t.Errorf("expired call at 20 priced %+v, want 8", exit)
	}
	if atSpot.Buy.Price < atSpot.Value || atSpot.Sell.Price > atSpot.Value {
		t.Errorf("quotes %+v not bracketing %v", atSpot, atSpot.Value)
	}
}

func TestPriceOptionInvalidOverride(t *testing.T) {
	env := Environment{Spot: 15, Volatility: 0.5}
	_, err := PriceOption(env, PriceRequest{Kind: Put, Strike: 12, TimeToExpiry: 1, Spot: -3})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestQuoteJSON(t *testing.T) {
	b, err := json.Marshal(RoundQuote(math.Pi, Sell))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"price":3.14,"direction":"sell"}` {
		t.Errorf("json = %s", b)
	}
}
