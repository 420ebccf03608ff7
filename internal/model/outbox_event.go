package model

import "time"

type OutboxEvent struct {
	ID           int64      `db:"id"`
	Aggregate    string     `db:"aggregate"`    // e.g. "campaign"
	AggregateID  string     `db:"aggregate_id"` // campaign ULID
	Topic        string     `db:"topic"`
	Payload      []byte     `db:"payload"`
	DispatchedAt *time.Time `db:"dispatched_at"` // set once the relay published it
	CreatedAt    time.Time  `db:"created_at"`
}
