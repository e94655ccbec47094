package chat

// SubscriptionState is the lifecycle of a live query:
// Unsubscribed -> Subscribing -> Active -> Cancelled, with Failed reachable
// from Subscribing and Active. Failed and Cancelled are terminal.
type SubscriptionState int32

const (
	StateUnsubscribed SubscriptionState = iota
	StateSubscribing
	StateActive
	StateFailed
	StateCancelled
)

func (s SubscriptionState) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s SubscriptionState) Terminal() bool {
	return s == StateFailed || s == StateCancelled
}
