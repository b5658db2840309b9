package domain

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSuccess   OrderStatus = "success"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Success is absent as a target: only provider-confirmed verification sets it.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusFailed},
	OrderStatusFailed:  {OrderStatusPending},
	OrderStatusSuccess: {OrderStatusShipped, OrderStatusDelivered},
	OrderStatusShipped: {OrderStatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusSuccess, OrderStatusFailed, OrderStatusShipped, OrderStatusDelivered:
		return st, true
	}
	return "", false
}

// IsPaid reports whether the provider has confirmed payment for an order in this status.
// Fulfilment statuses are only reachable from success.
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusSuccess || s == OrderStatusShipped || s == OrderStatusDelivered
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// CanTransitionTo reports whether an order may move from one status to another.
// Setting the current status again is a no-op and always allowed.
func CanTransitionTo(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
