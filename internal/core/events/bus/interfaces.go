package bus

import "time"

// Event types published inside posekit.
const (
	// TypeClipsReloaded fires on the consuming goroutine right after a new clip
	// table has been committed. Data is a ReloadSummary.
	TypeClipsReloaded = "clips.reloaded"
	// TypeAnimationTriggered fires when an observer receives a trigger from the
	// authoritative peer. Data is a Trigger.
	TypeAnimationTriggered = "animation.triggered"
)

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Delivery is synchronous: Publish runs handlers in the caller goroutine, so a
// handler subscribed to TypeClipsReloaded runs on the goroutine that committed
// the reload. Handler errors are joined and returned from Publish.
type EventBus interface {
	Publish(event Event) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	GetMetrics() Metrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Metrics is a best-effort snapshot of bus activity.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}

// ReloadSummary describes a committed clip reload.
type ReloadSummary struct {
	Generation uint64
	Clips      int
	Skipped    int
	Duration   time.Duration
}

// Trigger is an animation trigger resolved by an observer.
type Trigger struct {
	TargetID    int32
	AnimationID int32
	Known       bool
}
