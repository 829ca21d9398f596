package models

// User carries login credentials. Profile data lives on Customer.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
}

// Customer is the bank-facing profile attached to a user. Accounts
// reference customers by id; the link is immutable after creation.
type Customer struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Address   string `json:"address,omitempty" db:"address"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
