package broker

import (
	"context"

	"flock/pkg/models"
)

// DeliveryObserver receives the outcome of a delivery once in-process retries are done.
type DeliveryObserver func(env models.EventEnvelope, err error)

// ObservableConsumer is a Consumer that retries the handler in-process and
// reports one outcome per delivery instead of one per attempt.
type ObservableConsumer interface {
	Consumer
	ObserveDeliveries(observer DeliveryObserver)
}

// notifyDelivery skips failures caused by shutdown; those are not processing outcomes.
func notifyDelivery(ctx context.Context, observer DeliveryObserver, env models.EventEnvelope, err error) {
	if observer == nil || (err != nil && ctx.Err() != nil) {
		return
	}
	observer(env, err)
}
