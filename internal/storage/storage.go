package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nairabank/backend/internal/models"
)

var (
	// ErrVersionConflict is reported by Batch.Commit when an account
	// update carries a stale version token, meaning another writer
	// committed first.
	ErrVersionConflict = errors.New("account version conflict")

	// ErrNotFound is returned by single-row lookups with no match.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAccountNumber is returned when an insert trips the
	// unique constraint on accounts.account_number.
	ErrDuplicateAccountNumber = errors.New("account number already exists")

	// ErrDuplicateEmail is returned when an insert trips the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Batch stages account updates and transaction inserts, then applies
// them as one atomic commit. Staged operations touch the database only
// inside Commit.
type Batch interface {
	UpdateAccount(account *models.Account)
	InsertTransaction(txn *models.Transaction)
	Commit(ctx context.Context) error
}

// Ledger is the store port consumed by the transfer engine and the
// transaction history query.
type Ledger interface {
	FindAccounts(ctx context.Context, ownerUserID int64, accountNumber string) ([]models.Account, error)
	NewBatch() Batch
	CountTransactionsByOwner(ctx context.Context, ownerUserID int64) (int64, error)
	ListTransactionsByOwner(ctx context.Context, ownerUserID int64, skip, take int) ([]models.TransactionView, error)
}

// AccountDetails is the joined user/customer/account projection for the
// authenticated caller.
type AccountDetails struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
	Address       string `json:"address,omitempty"`
}

// Beneficiary is the lookup result used before initiating a transfer.
type Beneficiary struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
}

// Directory is the store port for account opening, profile lookups and
// credential reads.
type Directory interface {
	CreateProfile(ctx context.Context, user *models.User, customer *models.Customer, account *models.Account) error
	GetAccountDetails(ctx context.Context, userID int64) (*AccountDetails, error)
	GetBeneficiary(ctx context.Context, email string) (*Beneficiary, error)
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the Postgres-backed implementation of the store ports.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var (
	_ Ledger    = (*Store)(nil)
	_ Directory = (*Store)(nil)
)
