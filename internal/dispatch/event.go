package dispatch

import "time"

// Kind selects which sinks care about an event.
type Kind string

const (
	// KindInterestStats increments lifetime sent/received counters.
	KindInterestStats Kind = "interest_stats"
	// KindMutualMatch increments mutual match counters for both users.
	KindMutualMatch Kind = "mutual_match"
	// KindNotification delivers an in-app notification to TargetID.
	KindNotification Kind = "notification"
	// KindEmail requests an email to TargetID.
	KindEmail Kind = "email"
	// KindPoints awards engagement points to ActorID.
	KindPoints Kind = "points"
)

// Topics carried by notification, email and points events.
const (
	TopicNewInterest         = "new_interest"
	TopicMutualMatch         = "mutual_match"
	TopicInterestAccepted    = "interest_accepted"
	TopicInterestRejected    = "interest_rejected"
	TopicInterestWithdrawn   = "interest_withdrawn"
	TopicConnectionWithdrawn = "connection_withdrawn"
)

// Event is a best-effort side effect of an interest transition.
//
// ActorID and TargetID mean sender/receiver for KindInterestStats, the two matched users for
// KindMutualMatch, and the acting user/recipient otherwise.
type Event struct {
	Kind       Kind           `json:"kind"`
	Topic      string         `json:"topic,omitempty"`
	ActorID    uint           `json:"actor_id"`
	TargetID   uint           `json:"target_id"`
	InterestID string         `json:"interest_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
