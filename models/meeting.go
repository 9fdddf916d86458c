package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingMinute is a reference record searched lexically, not via embeddings.
// The corpus is small enough that token-overlap scoring over all entries is
// cheaper and more predictable than maintaining vectors for it.
type MeetingMinute struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Topic    string             `json:"topic" bson:"topic"`
	Details  string             `json:"details" bson:"details,omitempty"`
	Keywords []string           `json:"keywords" bson:"keywords,omitempty"`
	HeldAt   time.Time          `json:"held_at" bson:"held_at"`
}
