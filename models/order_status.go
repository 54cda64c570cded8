package models

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// happy path: new -> preparing -> served. delivered dan cancelled adalah ekstensi.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusNew:       {OrderStatusPreparing: true, OrderStatusCancelled: true},
	OrderStatusPreparing: {OrderStatusServed: true, OrderStatusDelivered: true, OrderStatusCancelled: true},
	OrderStatusServed:    {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

var happyPath = map[OrderStatus]OrderStatus{
	OrderStatusNew:       OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusServed,
}

func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

// CanTransition reports whether an order may move from one status to another.
// Re-applying the current status is not a transition and returns false.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// NextStatus returns the happy-path successor, the one the kitchen dashboard offers.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := happyPath[s]
	return next, ok
}

// AllowedNext lists every valid successor in a stable order.
func AllowedNext(s OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, candidate := range []OrderStatus{OrderStatusPreparing, OrderStatusServed, OrderStatusDelivered, OrderStatusCancelled} {
		if validNext[s][candidate] {
			out = append(out, candidate)
		}
	}
	return out
}

var validPaymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentStatusUnpaid:  {PaymentStatusPaid: true},
	PaymentStatusPending: {PaymentStatusPaid: true, PaymentStatusUnpaid: true},
	PaymentStatusPaid:    {},
}

func (s PaymentStatus) Valid() bool {
	_, ok := validPaymentNext[s]
	return ok
}

// CanTransitionPayment covers reconciliation, e.g. staff collecting cash.
func CanTransitionPayment(from, to PaymentStatus) bool {
	return validPaymentNext[from][to]
}
