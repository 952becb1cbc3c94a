package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"settlement/internal/domain"
	"settlement/internal/redis"
	"settlement/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository. It
// enforces the ride uniqueness constraint under a single lock, which is
// what makes it usable for exactly-once concurrency tests.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment // by payment ID
	byRide   map[string]string          // ride ID -> payment ID

	// Counters for verification
	CreateCallCount        int32
	MarkProcessedCallCount int32

	// Error injection
	CreateError        error
	MarkProcessedError error
	ListError          error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
		byRide:   make(map[string]string),
	}
}

// AddPayment seeds a payment directly for test setup.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	m.byRide[payment.RideID] = payment.ID
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byRide[payment.RideID]; exists {
		return repository.ErrDuplicate
	}
	clone := *payment
	m.payments[payment.ID] = &clone
	m.byRide[payment.RideID] = payment.ID
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *payment
	return &clone, nil
}

func (m *MockPaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRide[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *m.payments[id]
	return &clone, nil
}

func (m *MockPaymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]*domain.Payment, int, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	matches := m.matching(func(p *domain.Payment) bool {
		if filter.CaptainID != "" && p.CaptainID != filter.CaptainID {
			return false
		}
		if filter.CustomerID != "" && p.CustomerID != filter.CustomerID {
			return false
		}
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		return inRange(p.CollectedAt, filter.From, filter.To)
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CollectedAt.After(matches[j].CollectedAt)
	})

	total := len(matches)
	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			matches = nil
		} else {
			matches = matches[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, total, nil
}

func (m *MockPaymentRepository) ListSettledBetween(ctx context.Context, from, to time.Time) ([]*domain.Payment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	matches := m.matching(func(p *domain.Payment) bool {
		return inRange(p.CollectedAt, from, to)
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CollectedAt.Before(matches[j].CollectedAt)
	})
	return matches, nil
}

func (m *MockPaymentRepository) ListUnprocessedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.matching(func(p *domain.Payment) bool {
		return !p.IsProcessed && p.CreatedAt.Before(cutoff)
	}), nil
}

func (m *MockPaymentRepository) MarkProcessed(ctx context.Context, id, processedBy string, at time.Time) error {
	atomic.AddInt32(&m.MarkProcessedCallCount, 1)
	if m.MarkProcessedError != nil {
		return m.MarkProcessedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.IsProcessed = true
	payment.ProcessedAt = at
	if processedBy != "" {
		payment.ProcessedBy = processedBy
	}
	payment.UpdatedAt = at
	return nil
}

func (m *MockPaymentRepository) SetDispute(ctx context.Context, id string, hasDispute bool, reason string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.HasDispute = hasDispute
	payment.DisputeReason = reason
	payment.DisputeResolvedAt = resolvedAt
	return nil
}

func (m *MockPaymentRepository) matching(keep func(*domain.Payment) bool) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if keep(p) {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result
}

// CountPayments returns the number of persisted payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// GetPaymentByRide returns the payment for a ride (for test assertions).
func (m *MockPaymentRepository) GetPaymentByRide(rideID string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRide[rideID]
	if !ok {
		return nil
	}
	return m.payments[id]
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	UpdateCallCount int32

	// Error injection
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *ride
	return &clone, nil
}

func (m *MockRideRepository) UpdatePaymentFields(ctx context.Context, id string, status domain.RideStatus, paymentStatus domain.PaymentStatus, details domain.RidePaymentDetails) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = status
	ride.PaymentStatus = paymentStatus
	ride.PaymentDetails = details
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// ──────────────────────────────────────────────
// MOCK ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockAccountRepository is a mock implementation of AccountRepository. The
// entry log enforces one entry per (account, ride), matching the unique
// index the settlement replay relies on.
type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.FinancialAccount // by owner ID
	entries  map[string]*domain.AccountEntry     // by accountID+rideID

	// Counters for verification
	IncrementCallCount   int32
	AppendEntryCallCount int32

	// Error injection
	FindOrCreateError error
	IncrementError    error
	AppendEntryError  error
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.FinancialAccount),
		entries:  make(map[string]*domain.AccountEntry),
	}
}

func (m *MockAccountRepository) FindOrCreateByOwner(ctx context.Context, ownerID string, role domain.AccountRole, currency string) (*domain.FinancialAccount, error) {
	if m.FindOrCreateError != nil {
		return nil, m.FindOrCreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[ownerID]; ok {
		clone := *account
		return &clone, nil
	}
	account := &domain.FinancialAccount{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		OwnerRole: role,
		Currency:  currency,
		CreatedAt: time.Now(),
	}
	m.accounts[ownerID] = account
	clone := *account
	return &clone, nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.FinancialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.ID == id {
			clone := *account
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAccountRepository) Increment(ctx context.Context, accountID string, amount float64) (float64, error) {
	atomic.AddInt32(&m.IncrementCallCount, 1)
	if m.IncrementError != nil {
		return 0, m.IncrementError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.ID == accountID {
			account.Vault += amount
			return account.Vault, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *MockAccountRepository) AppendEntry(ctx context.Context, entry *domain.AccountEntry) error {
	atomic.AddInt32(&m.AppendEntryCallCount, 1)
	if m.AppendEntryError != nil {
		return m.AppendEntryError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entry.AccountID + "/" + entry.RideID
	if _, exists := m.entries[key]; exists {
		return repository.ErrDuplicate
	}
	clone := *entry
	m.entries[key] = &clone
	return nil
}

func (m *MockAccountRepository) ListEntries(ctx context.Context, accountID string, limit int) ([]*domain.AccountEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.AccountEntry
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			clone := *entry
			result = append(result, &clone)
		}
	}
	return result, nil
}

// VaultOf returns the balance of the owner's account (for test assertions).
func (m *MockAccountRepository) VaultOf(ownerID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[ownerID]; ok {
		return account.Vault
	}
	return 0
}

// CountEntriesFor returns the number of log entries on the owner's account.
func (m *MockAccountRepository) CountEntriesFor(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[ownerID]
	if !ok {
		return 0
	}
	count := 0
	for _, entry := range m.entries {
		if entry.AccountID == account.ID {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK TRANSFER REPOSITORY
// ──────────────────────────────────────────────

// MockTransferRepository is a mock implementation of TransferRepository
// with the one-transfer-per-payment uniqueness guard.
type MockTransferRepository struct {
	mu        sync.Mutex
	transfers map[string]*domain.MoneyTransfer // by payment ID

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockTransferRepository creates a new mock transfer repository.
func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[string]*domain.MoneyTransfer),
	}
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *domain.MoneyTransfer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.transfers[transfer.PaymentID]; exists {
		return repository.ErrDuplicate
	}
	clone := *transfer
	m.transfers[transfer.PaymentID] = &clone
	return nil
}

func (m *MockTransferRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.MoneyTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transfer, ok := m.transfers[paymentID]
	if !ok {
		return nil, nil
	}
	clone := *transfer
	return &clone, nil
}

func (m *MockTransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, transfer := range m.transfers {
		if transfer.ID == id {
			transfer.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// CountTransfers returns the number of recorded transfers.
func (m *MockTransferRepository) CountTransfers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

// GetTransferByPayment returns the transfer for a payment (for assertions).
func (m *MockTransferRepository) GetTransferByPayment(paymentID string) *domain.MoneyTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transfers[paymentID]
}

// ──────────────────────────────────────────────
// MOCK CAPTAIN REPOSITORY
// ──────────────────────────────────────────────

// MockCaptainRepository is a mock implementation of CaptainRepository.
type MockCaptainRepository struct {
	mu       sync.Mutex
	captains map[string]*domain.Captain

	// Counters for verification
	IncrementStatsCallCount int32

	// Error injection
	IncrementStatsError error
}

// NewMockCaptainRepository creates a new mock captain repository.
func NewMockCaptainRepository() *MockCaptainRepository {
	return &MockCaptainRepository{
		captains: make(map[string]*domain.Captain),
	}
}

// AddCaptain adds a captain to the mock repository.
func (m *MockCaptainRepository) AddCaptain(captain *domain.Captain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captains[captain.ID] = captain
}

func (m *MockCaptainRepository) GetByID(ctx context.Context, id string) (*domain.Captain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	captain, ok := m.captains[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *captain
	return &clone, nil
}

func (m *MockCaptainRepository) IncrementStats(ctx context.Context, id string, delta repository.StatsDelta) error {
	atomic.AddInt32(&m.IncrementStatsCallCount, 1)
	if m.IncrementStatsError != nil {
		return m.IncrementStatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	captain, ok := m.captains[id]
	if !ok {
		captain = &domain.Captain{ID: id}
		m.captains[id] = captain
	}
	captain.TotalEarnings += delta.Amount
	captain.TotalRides += delta.RidesDelta
	captain.LastPaymentDate = time.Now()
	return nil
}

// GetCaptain returns the captain by ID (for test assertions).
func (m *MockCaptainRepository) GetCaptain(id string) *domain.Captain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captains[id]
}

// ──────────────────────────────────────────────
// MOCK CUSTOMER REPOSITORY
// ──────────────────────────────────────────────

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer

	// Counters for verification
	IncrementStatsCallCount int32

	// Error injection
	IncrementStatsError error
}

// NewMockCustomerRepository creates a new mock customer repository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *customer
	return &clone, nil
}

func (m *MockCustomerRepository) IncrementStats(ctx context.Context, id string, delta repository.StatsDelta) error {
	atomic.AddInt32(&m.IncrementStatsCallCount, 1)
	if m.IncrementStatsError != nil {
		return m.IncrementStatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		customer = &domain.Customer{ID: id}
		m.customers[id] = customer
	}
	customer.TotalSpent += delta.Amount
	customer.TotalRides += delta.RidesDelta
	return nil
}

// GetCustomer returns the customer by ID (for test assertions).
func (m *MockCustomerRepository) GetCustomer(id string) *domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT CACHE
// ──────────────────────────────────────────────

// MockPaymentCache is a mock implementation of redis.PaymentCache.
type MockPaymentCache struct {
	mu      sync.Mutex
	entries map[string]*redis.CachedPayment

	// Counters for verification
	SetCallCount int32

	// Error injection
	SetError error
}

// NewMockPaymentCache creates a new mock payment cache.
func NewMockPaymentCache() *MockPaymentCache {
	return &MockPaymentCache{
		entries: make(map[string]*redis.CachedPayment),
	}
}

func (m *MockPaymentCache) SetSettled(ctx context.Context, payment *domain.Payment, ttl time.Duration) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[payment.RideID] = &redis.CachedPayment{
		PaymentID:         payment.ID,
		RideID:            payment.RideID,
		CaptainID:         payment.CaptainID,
		ReceivedAmount:    payment.ReceivedAmount,
		CaptainEarnings:   payment.CaptainEarnings,
		CompanyCommission: payment.CompanyCommission,
		Status:            string(payment.Status),
		CollectedAt:       payment.CollectedAt,
	}
	return nil
}

func (m *MockPaymentCache) GetSettled(ctx context.Context, rideID string) (*redis.CachedPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[rideID], nil
}

func (m *MockPaymentCache) Invalidate(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, rideID)
	return nil
}

// HasCached reports whether a ride's payment summary is cached.
func (m *MockPaymentCache) HasCached(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[rideID]
	return ok
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ repository.PaymentRepository  = (*MockPaymentRepository)(nil)
	_ repository.RideRepository     = (*MockRideRepository)(nil)
	_ repository.AccountRepository  = (*MockAccountRepository)(nil)
	_ repository.TransferRepository = (*MockTransferRepository)(nil)
	_ repository.CaptainRepository  = (*MockCaptainRepository)(nil)
	_ repository.CustomerRepository = (*MockCustomerRepository)(nil)
	_ redis.PaymentCache            = (*MockPaymentCache)(nil)
)
