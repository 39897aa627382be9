package types

import "time"

const (
	ActivityEdge    = "edge"
	ActivityComment = "comment"
)

// Activity 发往下游通知服务的动态
type Activity struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	SubjectID string    `json:"subject_id"`
	Kind      string    `json:"kind,omitempty"`
	Edge      string    `json:"edge,omitempty"`
	Active    bool      `json:"active"`
	RefID     string    `json:"ref_id,omitempty"`
	At        time.Time `json:"at"`
}
