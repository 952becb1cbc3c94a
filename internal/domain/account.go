package domain

import "time"

// AccountRole identifies who owns a financial account.
type AccountRole string

const (
	AccountRoleCaptain  AccountRole = "CAPTAIN"
	AccountRoleCustomer AccountRole = "CUSTOMER"
	AccountRoleAdmin    AccountRole = "ADMIN"
)

// FinancialAccount holds a balance for a captain, customer, or the company.
// Accounts are created lazily the first time a balance operation needs one.
// The vault is only ever changed through atomic increments; it must always be
// reconcilable by summing the account's transfer entries.
type FinancialAccount struct {
	ID        string
	OwnerID   string
	OwnerRole AccountRole
	Vault     float64
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountEntry is one row of an account's append-only transaction log.
type AccountEntry struct {
	ID          string
	AccountID   string
	RideID      string
	CaptainID   string
	Amount      float64
	Description string
	CreatedAt   time.Time
}
