package usecase

import (
	"context"

	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/entity"
	"ticket-sales/internal/data/repository"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockTicketRepository is a testify mock of repository.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func ticketArg(args mock.Arguments, i int) *entity.Ticket {
	t, _ := args.Get(i).(*entity.Ticket)
	return t
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *MockTicketRepository) BulkCreate(ctx context.Context, tickets []*entity.Ticket) error {
	return m.Called(ctx, tickets).Error(0)
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	args := m.Called(ctx, id)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.Ticket, error) {
	args := m.Called(ctx, id)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) FindByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	args := m.Called(ctx, code)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) FindActiveByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	args := m.Called(ctx, code)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) FindMany(ctx context.Context, filter entity.TicketFilter, limit, offset int) ([]*entity.Ticket, error) {
	args := m.Called(ctx, filter, limit, offset)
	tickets, _ := args.Get(0).([]*entity.Ticket)
	return tickets, args.Error(1)
}

func (m *MockTicketRepository) Count(ctx context.Context, filter entity.TicketFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, id int64, patch entity.TicketPatch) (*entity.Ticket, error) {
	args := m.Called(ctx, id, patch)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) MarkUsed(ctx context.Context, id int64) (*entity.Ticket, error) {
	args := m.Called(ctx, id)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.Ticket, error) {
	args := m.Called(ctx, id, active)
	return ticketArg(args, 0), args.Error(1)
}

func (m *MockTicketRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Ticket, error) {
	args := m.Called(ctx, id, deleted)
	return ticketArg(args, 0), args.Error(1)
}

// MockSaleRepository is a testify mock of repository.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func saleArg(args mock.Arguments, i int) *entity.Sale {
	s, _ := args.Get(i).(*entity.Sale)
	return s
}

func (m *MockSaleRepository) CreateWithDetails(ctx context.Context, sale *entity.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id int64) (*entity.Sale, error) {
	args := m.Called(ctx, id)
	return saleArg(args, 0), args.Error(1)
}

func (m *MockSaleRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.Sale, error) {
	args := m.Called(ctx, id)
	return saleArg(args, 0), args.Error(1)
}

func (m *MockSaleRepository) FindMany(ctx context.Context, filter entity.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	args := m.Called(ctx, filter, limit, offset)
	sales, _ := args.Get(0).([]*entity.Sale)
	return sales, args.Error(1)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter entity.SaleFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Update(ctx context.Context, id int64, patch entity.SalePatch) (*entity.Sale, error) {
	args := m.Called(ctx, id, patch)
	return saleArg(args, 0), args.Error(1)
}

func (m *MockSaleRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.Sale, error) {
	args := m.Called(ctx, id, active)
	return saleArg(args, 0), args.Error(1)
}

func (m *MockSaleRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Sale, error) {
	args := m.Called(ctx, id, deleted)
	return saleArg(args, 0), args.Error(1)
}

func (m *MockSaleRepository) Stats(ctx context.Context) (*entity.SaleStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*entity.SaleStats)
	return stats, args.Error(1)
}

// MockSaleDetailRepository is a testify mock of repository.SaleDetailRepository
type MockSaleDetailRepository struct {
	mock.Mock
}

func detailArg(args mock.Arguments, i int) *entity.SaleDetail {
	d, _ := args.Get(i).(*entity.SaleDetail)
	return d
}

func (m *MockSaleDetailRepository) FindByID(ctx context.Context, id int64) (*entity.SaleDetail, error) {
	args := m.Called(ctx, id)
	return detailArg(args, 0), args.Error(1)
}

func (m *MockSaleDetailRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.SaleDetail, error) {
	args := m.Called(ctx, id)
	return detailArg(args, 0), args.Error(1)
}

func (m *MockSaleDetailRepository) FindBySaleID(ctx context.Context, saleID int64) ([]*entity.SaleDetail, error) {
	args := m.Called(ctx, saleID)
	details, _ := args.Get(0).([]*entity.SaleDetail)
	return details, args.Error(1)
}

func (m *MockSaleDetailRepository) FindBySaleIDs(ctx context.Context, saleIDs []int64) ([]*entity.SaleDetail, error) {
	args := m.Called(ctx, saleIDs)
	details, _ := args.Get(0).([]*entity.SaleDetail)
	return details, args.Error(1)
}

func (m *MockSaleDetailRepository) Update(ctx context.Context, id int64, patch entity.SaleDetailPatch) (*entity.SaleDetail, error) {
	args := m.Called(ctx, id, patch)
	return detailArg(args, 0), args.Error(1)
}

func (m *MockSaleDetailRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.SaleDetail, error) {
	args := m.Called(ctx, id, deleted)
	return detailArg(args, 0), args.Error(1)
}

// MockCodeGenerator hands out codes from a fixed queue
type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate(ctx context.Context, taken map[string]struct{}) (string, error) {
	args := m.Called(ctx, taken)
	return args.String(0), args.Error(1)
}

type testDeps struct {
	tickets *MockTicketRepository
	sales   *MockSaleRepository
	details *MockSaleDetailRepository
	repo    *repository.Repository
}

func newTestDeps() *testDeps {
	d := &testDeps{
		tickets: new(MockTicketRepository),
		sales:   new(MockSaleRepository),
		details: new(MockSaleDetailRepository),
	}
	d.repo = &repository.Repository{
		Ticket:     d.tickets,
		Sale:       d.sales,
		SaleDetail: d.details,
	}
	return d
}

func (d *testDeps) ticketService(codes CodeGenerator) TicketService {
	if codes == nil {
		codes = NewCodeGenerator(d.tickets, zap.NewNop())
	}
	return NewTicketService(d.repo, codes, cache.NewNoop(), zap.NewNop())
}

func (d *testDeps) saleService() SaleService {
	return NewSaleService(d.repo, cache.NewNoop(), zap.NewNop())
}

func (d *testDeps) assertExpectations(t mock.TestingT) {
	d.tickets.AssertExpectations(t)
	d.sales.AssertExpectations(t)
	d.details.AssertExpectations(t)
}
