package simulator

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/common"
	"github.com/Shopify/gocheckoutflow/internal/metrics"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	orderFailureMessage = "Unable to place order: the payment processor rejected the request."
)

// OrderService stands in for the order backend: placements are admitted at a
// fixed rate and either confirmed with the next order number or failed.
type OrderService struct {
	Limiter  *rate.Limiter
	Sequence *common.OrderSequence
}

func MakeOrderService(ordersPerSecond float64, burst int, firstOrderNumber int64) *OrderService {
	limit := rate.Limit(ordersPerSecond)
	if ordersPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &OrderService{
		Limiter:  rate.NewLimiter(limit, burst),
		Sequence: common.MakeOrderSequence(firstOrderNumber),
	}
}

// PlaceOrder settles an in-flight placement for the session behind manager.
// Returns true if the order was confirmed.
func (o *OrderService) PlaceOrder(
	ctx context.Context,
	manager *session.Manager,
	rnd *rand.Rand,
	failureProbabilityPct float64,
) (bool, error) {
	waitStart := time.Now()
	if err := o.Limiter.Wait(ctx); err != nil {
		return false, errors.Wrap(err, "waiting for order capacity")
	}
	metrics.Distribution("order_service.admission_wait_ms", float64(time.Since(waitStart).Milliseconds()), nil)

	if rnd.Float64() < failureProbabilityPct {
		metrics.Incr("order_service.placement", []string{"operation:failed"})
		return false, manager.FailSubmission(orderFailureMessage)
	}

	if err := manager.SetOrderDetailsLoading(true); err != nil {
		return false, err
	}
	snapshot, err := manager.Snapshot()
	if err != nil {
		return false, err
	}
	details := map[string]string{
		"items":      strconv.Itoa(snapshot.ItemCount()),
		"placed_at":  time.Now().UTC().Format(time.RFC3339),
		"session_id": snapshot.ID,
	}
	if err := manager.ConfirmOrder(o.Sequence.Next(), details); err != nil {
		return false, err
	}
	metrics.Incr("order_service.placement", []string{"operation:confirmed"})
	return true, nil
}

// Placed returns how many orders have been confirmed.
func (o *OrderService) Placed() int64 {
	return o.Sequence.Issued()
}
