package model

import "time"

// AllocationLock is an advisory lock document. Its _id is the lock key, so a
// second writer inserting the same key gets a duplicate key error.
type AllocationLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
