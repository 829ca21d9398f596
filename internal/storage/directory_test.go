package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nairabank/backend/internal/models"
)

func newProfile(t *testing.T) (*models.User, *models.Customer, *models.Account) {
	t.Helper()
	user := &models.User{Email: "Ada@Example.com", Password: "hashed"}
	customer := &models.Customer{FirstName: "Ada", LastName: "Obi"}
	account := &models.Account{
		AccountNumber: "1111111115",
		Balance:       models.ZeroMoney("NGN"),
	}
	return user, customer, account
}

func TestStore_CreateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)

	t.Run("inserts user, customer and account in one transaction", func(t *testing.T) {
		user, customer, account := newProfile(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("ada@example.com", "hashed").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(int64(1), "Ada", "Obi", "").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("1111111115", "0.00", "NGN", int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectCommit()

		require.NoError(t, store.CreateProfile(context.Background(), user, customer, account))
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, int64(10), customer.ID)
		assert.Equal(t, int64(100), account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("account number collision maps to ErrDuplicateAccountNumber", func(t *testing.T) {
		user, customer, account := newProfile(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectQuery("INSERT INTO accounts").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_account_number_key"})
		mock.ExpectRollback()

		err := store.CreateProfile(context.Background(), user, customer, account)
		assert.ErrorIs(t, err, ErrDuplicateAccountNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email collision maps to ErrDuplicateEmail", func(t *testing.T) {
		user, customer, account := newProfile(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
		mock.ExpectRollback()

		err := store.CreateProfile(context.Background(), user, customer, account)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Lookups(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)

	t.Run("account details", func(t *testing.T) {
		mock.ExpectQuery("SELECT c.first_name").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "account_number", "address"}).
				AddRow("Ada Obi", "ada@example.com", "1111111115", nil))

		details, err := store.GetAccountDetails(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi", details.FullName)
		assert.Equal(t, "1111111115", details.AccountNumber)
		assert.Empty(t, details.Address)
	})

	t.Run("missing beneficiary yields ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT c.first_name").
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "account_number"}))

		_, err := store.GetBeneficiary(context.Background(), "Ghost@Example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("user by email", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, password FROM users").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}).
				AddRow(1, "ada@example.com", "hashed"))

		user, err := store.GetUserByEmail(context.Background(), "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
