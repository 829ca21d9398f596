package models

import (
	"time"
)

// TransactionStatus marks which side of a transfer a ledger row records.
type TransactionStatus string

const (
	StatusDebit  TransactionStatus = "DEBIT"
	StatusCredit TransactionStatus = "CREDIT"
)

// Transaction is one side of a double-entry transfer record. Every
// successful transfer produces exactly two rows sharing a reference
// number: a DEBIT owned by the sender and a CREDIT owned by the
// recipient. Rows are append-only.
type Transaction struct {
	ID              int64             `json:"id" db:"id"`
	ReferenceNumber string            `json:"reference_number" db:"reference_number"`
	Amount          Money             `json:"amount"`
	AccountOwnerID  int64             `json:"account_owner_id" db:"account_owner_id"`
	SenderID        int64             `json:"sender_id" db:"sender_id"`
	RecipientID     int64             `json:"recipient_id" db:"recipient_id"`
	Status          TransactionStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}

// TransactionView is the read-side projection returned by the history
// query, with counterparty names resolved at read time.
type TransactionView struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	Amount    Money             `json:"amount"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}
