package models

import (
	"time"
)

const (
	AccountNumberLength   = 10
	ReferenceNumberLength = 17
)

// Account is a customer's bank account. Version is the optimistic
// concurrency token; the storage layer bumps it on every persisted
// mutation and rejects updates carrying a stale value.
type Account struct {
	ID             int64      `json:"id" db:"id"`
	AccountNumber  string     `json:"account_number" db:"account_number"`
	Balance        Money      `json:"balance"`
	CustomerID     int64      `json:"customer_id" db:"customer_id"`
	Version        int        `json:"-" db:"version"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty" db:"last_modified_at"`
}
