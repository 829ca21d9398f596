package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nairabank/backend/internal/models"
)

// FindAccounts loads, in one read, every account owned by the given
// user together with the account matching the given number. The read is
// not locked; conflicts surface at Commit via the version token.
func (s *Store) FindAccounts(ctx context.Context, ownerUserID int64, accountNumber string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.account_number, a.balance, a.currency, a.customer_id, a.version, a.last_modified_at
		FROM accounts a
		JOIN customers c ON a.customer_id = c.id
		WHERE c.user_id = $1 OR a.account_number = $2
		ORDER BY a.id`,
		ownerUserID, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(rows *sql.Rows) (models.Account, error) {
	var (
		account  models.Account
		balance  string
		currency string
	)
	if err := rows.Scan(&account.ID, &account.AccountNumber, &balance, &currency,
		&account.CustomerID, &account.Version, &account.LastModifiedAt); err != nil {
		return models.Account{}, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return models.Account{}, fmt.Errorf("invalid balance for account %d: %w", account.ID, err)
	}
	account.Balance = models.NewMoney(amount, currency)
	return account, nil
}

// CountTransactionsByOwner returns the size of the owner's full
// transaction set, independent of pagination.
func (s *Store) CountTransactionsByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN accounts owner ON t.account_owner_id = owner.id
		JOIN customers oc ON owner.customer_id = oc.id
		WHERE oc.user_id = $1`,
		ownerUserID).Scan(&total)
	return total, err
}

// ListTransactionsByOwner returns a page of the owner's transactions
// with sender and recipient names resolved by explicit joins.
func (s *Store) ListTransactionsByOwner(ctx context.Context, ownerUserID int64, skip, take int) ([]models.TransactionView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sc.first_name || ' ' || sc.last_name,
		       rc.first_name || ' ' || rc.last_name,
		       t.amount, t.currency, t.status, t.created_at
		FROM transactions t
		JOIN accounts owner ON t.account_owner_id = owner.id
		JOIN customers oc ON owner.customer_id = oc.id
		JOIN accounts sender ON t.sender_id = sender.id
		JOIN customers sc ON sender.customer_id = sc.id
		JOIN accounts recipient ON t.recipient_id = recipient.id
		JOIN customers rc ON recipient.customer_id = rc.id
		WHERE oc.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		OFFSET $2 LIMIT $3`,
		ownerUserID, skip, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.TransactionView{}
	for rows.Next() {
		var (
			view     models.TransactionView
			amount   string
			currency string
		)
		if err := rows.Scan(&view.From, &view.To, &amount, &currency, &view.Status, &view.CreatedAt); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction amount: %w", err)
		}
		view.Amount = models.NewMoney(value, currency)
		items = append(items, view)
	}
	return items, rows.Err()
}

// NewBatch returns an empty staging batch bound to this store.
func (s *Store) NewBatch() Batch {
	return &sqlBatch{db: s.db}
}

type sqlBatch struct {
	db       *sql.DB
	accounts []*models.Account
	txns     []*models.Transaction
}

func (b *sqlBatch) UpdateAccount(account *models.Account) {
	b.accounts = append(b.accounts, account)
}

func (b *sqlBatch) InsertTransaction(txn *models.Transaction) {
	b.txns = append(b.txns, txn)
}

// Commit applies every staged update and insert inside one database
// transaction. Each account update is keyed by id and the version read
// at load time; zero rows affected means another writer committed
// first, and the whole batch rolls back with ErrVersionConflict.
func (b *sqlBatch) Commit(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, account := range b.accounts {
		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET balance = $1, last_modified_at = $2, version = version + 1
			WHERE id = $3 AND version = $4`,
			account.Balance.Amount().StringFixed(models.MoneyScale),
			account.LastModifiedAt, account.ID, account.Version)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrVersionConflict
		}
	}

	for _, txn := range b.txns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (reference_number, amount, currency, account_owner_id, sender_id, recipient_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			txn.ReferenceNumber,
			txn.Amount.Amount().StringFixed(models.MoneyScale),
			txn.Amount.Currency(),
			txn.AccountOwnerID, txn.SenderID, txn.RecipientID,
			txn.Status, txn.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	// Versions advance with the committed rows so the staged accounts
	// stay coherent, though callers must re-read before retrying.
	for _, account := range b.accounts {
		account.Version++
	}
	return nil
}
