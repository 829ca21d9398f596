package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/nairabank/backend/internal/models"
)

// CreateProfile inserts the user, customer and zero-balance account
// rows for a new account opening in one transaction. Unique-constraint
// violations are translated so the caller can regenerate the account
// number or reject the email.
func (s *Store) CreateProfile(ctx context.Context, user *models.User, customer *models.Customer, account *models.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id`,
		strings.ToLower(user.Email), user.Password).Scan(&user.ID); err != nil {
		return translateUniqueViolation(err)
	}

	customer.UserID = user.ID
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO customers (user_id, first_name, last_name, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		customer.UserID, customer.FirstName, customer.LastName, customer.Address).Scan(&customer.ID); err != nil {
		return err
	}

	account.CustomerID = customer.ID
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO accounts (account_number, balance, currency, customer_id, version) VALUES ($1, $2, $3, $4, 1) RETURNING id`,
		account.AccountNumber,
		account.Balance.Amount().StringFixed(models.MoneyScale),
		account.Balance.Currency(),
		account.CustomerID).Scan(&account.ID); err != nil {
		return translateUniqueViolation(err)
	}

	return tx.Commit()
}

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch {
		case strings.Contains(pqErr.Constraint, "account_number"):
			return ErrDuplicateAccountNumber
		case strings.Contains(pqErr.Constraint, "email"):
			return ErrDuplicateEmail
		}
	}
	return err
}

func (s *Store) GetAccountDetails(ctx context.Context, userID int64) (*AccountDetails, error) {
	var (
		details AccountDetails
		address sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.first_name || ' ' || c.last_name, u.email, a.account_number, c.address
		FROM users u
		JOIN customers c ON c.user_id = u.id
		JOIN accounts a ON a.customer_id = c.id
		WHERE u.id = $1`,
		userID).Scan(&details.FullName, &details.Email, &details.AccountNumber, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	details.Address = address.String
	return &details, nil
}

func (s *Store) GetBeneficiary(ctx context.Context, email string) (*Beneficiary, error) {
	var beneficiary Beneficiary
	err := s.db.QueryRowContext(ctx, `
		SELECT c.first_name || ' ' || c.last_name, u.email, a.account_number
		FROM users u
		JOIN customers c ON c.user_id = u.id
		JOIN accounts a ON a.customer_id = c.id
		WHERE u.email = $1`,
		strings.ToLower(email)).Scan(&beneficiary.FullName, &beneficiary.Email, &beneficiary.AccountNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &beneficiary, nil
}

func (s *Store) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	var (
		customer models.Customer
		address  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, address FROM customers WHERE user_id = $1`,
		userID).Scan(&customer.ID, &customer.UserID, &customer.FirstName, &customer.LastName, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	customer.Address = address.String
	return &customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE customers SET first_name = $1, last_name = $2, address = $3 WHERE id = $4`,
		customer.FirstName, customer.LastName, customer.Address, customer.ID)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password FROM users WHERE email = $1`,
		strings.ToLower(email)).Scan(&user.ID, &user.Email, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
