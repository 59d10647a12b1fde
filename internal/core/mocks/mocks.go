package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// MockAccountRepository is a mock implementation of ports.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SetEntranceKey(ctx context.Context, id uuid.UUID, key []byte) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of ports.WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{}
}

func (m *MockWalletRepository) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of ports.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *MockEventRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Event, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, eventID int64, quantity int32) ([]*domain.Ticket, error) {
	args := m.Called(ctx, eventID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) NextUnsold(ctx context.Context, eventID int64) (*domain.Ticket, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

// MockRegistryRepository is a mock implementation of ports.RegistryRepository
type MockRegistryRepository struct {
	mock.Mock
}

func NewMockRegistryRepository() *MockRegistryRepository {
	return &MockRegistryRepository{}
}

func (m *MockRegistryRepository) InsertOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error {
	args := m.Called(ctx, ticketID, ownerID)
	return args.Error(0)
}

func (m *MockRegistryRepository) GetOwner(ctx context.Context, ticketID int64) (uuid.UUID, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRegistryRepository) UpdateOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error {
	args := m.Called(ctx, ticketID, ownerID)
	return args.Error(0)
}

func (m *MockRegistryRepository) SetApproval(ctx context.Context, ownerID, operatorID uuid.UUID, approved bool) error {
	args := m.Called(ctx, ownerID, operatorID, approved)
	return args.Error(0)
}

func (m *MockRegistryRepository) IsApproved(ctx context.Context, ownerID, operatorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, operatorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]int64, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockListingRepository is a mock implementation of ports.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{}
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Listing, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

// MockRegistryService is a mock implementation of ports.RegistryService
type MockRegistryService struct {
	mock.Mock
}

func NewMockRegistryService() *MockRegistryService {
	return &MockRegistryService{}
}

func (m *MockRegistryService) Mint(ctx context.Context, caller uuid.UUID, ticketID int64, recipient uuid.UUID) error {
	args := m.Called(ctx, caller, ticketID, recipient)
	return args.Error(0)
}

func (m *MockRegistryService) Transfer(ctx context.Context, caller uuid.UUID, ticketID int64, from, to uuid.UUID) error {
	args := m.Called(ctx, caller, ticketID, from, to)
	return args.Error(0)
}

func (m *MockRegistryService) SetApprovalForAll(ctx context.Context, owner, operator uuid.UUID, approved bool) error {
	args := m.Called(ctx, owner, operator, approved)
	return args.Error(0)
}

func (m *MockRegistryService) OwnerOf(ctx context.Context, ticketID int64) (uuid.UUID, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRegistryService) TicketsOf(ctx context.Context, ownerID uuid.UUID) ([]int64, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockSettlement is a mock implementation of ports.Settlement
type MockSettlement struct {
	mock.Mock
}

func NewMockSettlement() *MockSettlement {
	return &MockSettlement{}
}

func (m *MockSettlement) Forward(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal, memo string) error {
	args := m.Called(ctx, from, to, amount, memo)
	return args.Error(0)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockBroadcaster is a mock implementation of ports.ActivityBroadcaster
type MockBroadcaster struct {
	mock.Mock
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) Broadcast(activity domain.Activity) error {
	args := m.Called(activity)
	return args.Error(0)
}

// MockTransactionManager is a mock implementation of ports.TransactionManager
// that simply invokes the given function.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
