package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"food-order/models"

	"github.com/shopspring/decimal"
)

// PaymentGateway attempts to charge an order total. A declined payment is an
// outcome, not an error; errors mean the attempt itself did not finish.
type PaymentGateway interface {
	AttemptPayment(ctx context.Context, total decimal.Decimal) (models.PaymentOutcome, error)
}

// SimulatedGateway stands in for a real processor: it waits a fixed latency
// and then succeeds with the configured probability.
type SimulatedGateway struct {
	successRate float64
	latency     time.Duration
	float       func() float64
	intN        func(n int) int
}

func NewSimulatedGateway(successRate float64, latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		successRate: successRate,
		latency:     latency,
		float:       rand.Float64,
		intN:        rand.IntN,
	}
}

func (g *SimulatedGateway) AttemptPayment(ctx context.Context, total decimal.Decimal) (models.PaymentOutcome, error) {
	if total.IsNegative() {
		return models.PaymentOutcome{}, models.ValidationError("payment total must not be negative")
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return models.PaymentOutcome{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return models.PaymentOutcome{}, err
	}

	if g.float() >= g.successRate {
		return models.PaymentOutcome{Status: models.PaymentFailure}, nil
	}

	return models.PaymentOutcome{
		Status:      models.PaymentSuccess,
		OrderNumber: fmt.Sprintf("ORD-%06d", 100000+g.intN(900000)),
	}, nil
}
