package service

import (
	"context"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// AccountService exposes read-only views over financial accounts. The
// company's running totals come from here: the admin account's vault plus
// its entry log, not a separate stats document.
type AccountService struct {
	accounts repository.AccountRepository
	settings *SettingsStore

	adminOwnerID string
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts repository.AccountRepository, settings *SettingsStore, adminOwnerID string) *AccountService {
	return &AccountService{accounts: accounts, settings: settings, adminOwnerID: adminOwnerID}
}

// AccountSummary is an account balance with its most recent log entries.
type AccountSummary struct {
	Account *domain.FinancialAccount
	Entries []*domain.AccountEntry
}

// CaptainSummary returns the captain's account and recent entries. The
// account is created lazily, so a captain with no settlements yet gets a
// zero-vault summary rather than a not-found.
func (s *AccountService) CaptainSummary(ctx context.Context, captainID string, limit int) (*AccountSummary, error) {
	if captainID == "" {
		return nil, ErrMissingCaptainID
	}
	return s.summary(ctx, captainID, domain.AccountRoleCaptain, limit)
}

// CompanySummary returns the company account and recent commission entries.
func (s *AccountService) CompanySummary(ctx context.Context, limit int) (*AccountSummary, error) {
	return s.summary(ctx, s.adminOwnerID, domain.AccountRoleAdmin, limit)
}

func (s *AccountService) summary(ctx context.Context, ownerID string, role domain.AccountRole, limit int) (*AccountSummary, error) {
	currency := ""
	if supported := s.settings.Current().SupportedCurrencies; len(supported) > 0 {
		currency = supported[0]
	}

	account, err := s.accounts.FindOrCreateByOwner(ctx, ownerID, role, currency)
	if err != nil {
		return nil, err
	}

	entries, err := s.accounts.ListEntries(ctx, account.ID, limit)
	if err != nil {
		return nil, err
	}

	return &AccountSummary{Account: account, Entries: entries}, nil
}
