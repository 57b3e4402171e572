package model

import "time"

// RoomLock is an advisory lock serializing booking lifecycle writes on one room.
// Expired locks are removed by a TTL index and may be taken over before that.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
