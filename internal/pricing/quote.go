package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction decides which way a quote is rounded.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	if d == Sell {
		return "sell"
	}
	return "buy"
}

// MarshalText lets quotes serialise their direction as "buy"/"sell".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "buy":
		*d = Buy
	case "sell":
		*d = Sell
	default:
		return fmt.Errorf("%w: quote direction %q", ErrInvalidInput, b)
	}
	return nil
}

// QuotePlaces is the number of decimal places quotes are rounded to.
const QuotePlaces = 2

// Quote is a user-visible price.
type Quote struct {
	Price     float64   `json:"price"`
	Direction Direction `json:"direction"`
}

// RoundQuote rounds up to the next cent when buying and down when selling,
// giving a fill price that is never better than the model price.
func RoundQuote(value float64, dir Direction) Quote {
	d := decimal.NewFromFloat(value)
	if dir == Buy {
		d = d.RoundCeil(QuotePlaces)
	} else {
		d = d.RoundFloor(QuotePlaces)
	}
	return Quote{Price: d.InexactFloat64(), Direction: dir}
}

// PriceRequest describes a single priceOption call. A zero Spot prices the
// contract at the environment's spot.
type PriceRequest struct {
	Kind         Kind
	Strike       float64
	TimeToExpiry float64
	Spot         float64
}

// Price is an unrounded value together with both rounded quotes.
type Price struct {
	Value float64 `json:"value"`
	Buy   Quote   `json:"buy"`
	Sell  Quote   `json:"sell"`
}

// PriceOption values a contract at an arbitrary strike, expiry and ending
// price, as used to draw payoff curves.
func PriceOption(env Environment, req PriceRequest) (Price, error) {
	if req.Spot != 0 {
		env = env.WithSpot(req.Spot)
	}
	v, err := Value(env, req.Kind, req.Strike, req.TimeToExpiry)
	if err != nil {
		return Price{}, fmt.Errorf("price %s: %w", req.Kind, err)
	}
	return Price{
		Value: v,
		Buy:   RoundQuote(v, Buy),
		Sell:  RoundQuote(v, Sell),
	}, nil
}
