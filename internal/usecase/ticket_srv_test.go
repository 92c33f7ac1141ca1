package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"ticket-sales/internal/data/entity"
	"ticket-sales/internal/data/repository"
	"ticket-sales/internal/dto/request"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func liveTicket(id int64, code string) *entity.Ticket {
	now := time.Now()
	return &entity.Ticket{
		ID:              id,
		EventLocationID: 7,
		Code:            code,
		Base:            entity.Base{IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("issues active unused ticket", func(t *testing.T) {
		deps := newTestDeps()
		codes := new(MockCodeGenerator)
		codes.On("Generate", mock.Anything, mock.Anything).Return("QWERTY12", nil).Once()
		deps.tickets.On("Create", mock.Anything, mock.MatchedBy(func(tk *entity.Ticket) bool {
			return tk.Code == "QWERTY12" && tk.IsActive && !tk.IsUsed && tk.UsedAt == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Ticket).ID = 11
		}).Return(nil).Once()

		resp, err := deps.ticketService(codes).CreateTicket(ctx, &request.CreateTicketRequest{EventLocationID: 7})

		require.NoError(t, err)
		assert.Equal(t, int64(11), resp.ID)
		assert.Equal(t, "QWERTY12", resp.Code)
		assert.False(t, resp.IsUsed)
		assert.Nil(t, resp.UsedAt)
		assert.True(t, resp.IsActive)
		deps.assertExpectations(t)
		codes.AssertExpectations(t)
	})

	t.Run("insert race maps to duplicate code", func(t *testing.T) {
		deps := newTestDeps()
		codes := new(MockCodeGenerator)
		codes.On("Generate", mock.Anything, mock.Anything).Return("QWERTY12", nil).Once()
		deps.tickets.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUniqueViolation).Once()

		_, err := deps.ticketService(codes).CreateTicket(ctx, &request.CreateTicketRequest{EventLocationID: 7})

		require.ErrorIs(t, err, ErrDuplicateCode)
	})

	t.Run("exhausted generator is surfaced", func(t *testing.T) {
		deps := newTestDeps()
		codes := new(MockCodeGenerator)
		codes.On("Generate", mock.Anything, mock.Anything).Return("", ErrExhaustedRetries).Once()

		_, err := deps.ticketService(codes).CreateTicket(ctx, &request.CreateTicketRequest{EventLocationID: 7})

		require.ErrorIs(t, err, ErrExhaustedRetries)
		deps.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing event location fails validation", func(t *testing.T) {
		deps := newTestDeps()
		codes := new(MockCodeGenerator)

		_, err := deps.ticketService(codes).CreateTicket(ctx, &request.CreateTicketRequest{})

		require.ErrorIs(t, err, ErrValidation)
		codes.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}

func TestGenerateTickets_QuantityBounds(t *testing.T) {
	for _, quantity := range []int{-1, 0, 1001} {
		t.Run(fmt.Sprintf("quantity %d", quantity), func(t *testing.T) {
			deps := newTestDeps()
			codes := new(MockCodeGenerator)

			_, err := deps.ticketService(codes).GenerateTickets(context.Background(), &request.GenerateTicketsRequest{
				EventLocationID: 7,
				Quantity:        quantity,
			})

			require.ErrorIs(t, err, ErrInvalidQuantity)
			codes.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			deps.tickets.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
		})
	}
}

func TestGenerateTickets_MaxBatchHasDistinctCodes(t *testing.T) {
	deps := newTestDeps()
	deps.tickets.On("FindActiveByCode", mock.Anything, mock.Anything).Return(nil, nil)
	deps.tickets.On("BulkCreate", mock.Anything, mock.MatchedBy(func(tickets []*entity.Ticket) bool {
		return len(tickets) == MaxBatchQuantity
	})).Return(nil).Once()

	resp, err := deps.ticketService(nil).GenerateTickets(context.Background(), &request.GenerateTicketsRequest{
		EventLocationID: 7,
		Quantity:        MaxBatchQuantity,
	})

	require.NoError(t, err)
	require.Len(t, resp, MaxBatchQuantity)

	codes := make(map[string]struct{}, len(resp))
	for _, tk := range resp {
		assert.Len(t, tk.Code, CodeLength)
		assert.Equal(t, int64(7), tk.EventLocationID)
		assert.False(t, tk.IsUsed)
		codes[tk.Code] = struct{}{}
	}
	assert.Len(t, codes, MaxBatchQuantity)
	deps.tickets.AssertExpectations(t)
}

func TestGenerateTickets_InsertFailureIsAllOrNothing(t *testing.T) {
	deps := newTestDeps()
	codes := new(MockCodeGenerator)
	for i := 0; i < 3; i++ {
		codes.On("Generate", mock.Anything, mock.Anything).Return(fmt.Sprintf("BATCH00%d", i), nil).Once()
	}
	dbErr := errors.New("deadlock detected")
	deps.tickets.On("BulkCreate", mock.Anything, mock.Anything).Return(dbErr).Once()

	resp, err := deps.ticketService(codes).GenerateTickets(context.Background(), &request.GenerateTicketsRequest{
		EventLocationID: 7,
		Quantity:        3,
	})

	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrBatchCreateFailed)
	require.ErrorIs(t, err, dbErr)
}

func TestGenerateTickets_GeneratorFailureStopsBatch(t *testing.T) {
	deps := newTestDeps()
	codes := new(MockCodeGenerator)
	codes.On("Generate", mock.Anything, mock.Anything).Return("BATCH001", nil).Once()
	codes.On("Generate", mock.Anything, mock.Anything).Return("", ErrExhaustedRetries).Once()

	_, err := deps.ticketService(codes).GenerateTickets(context.Background(), &request.GenerateTicketsRequest{
		EventLocationID: 7,
		Quantity:        5,
	})

	require.ErrorIs(t, err, ErrExhaustedRetries)
	deps.tickets.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}

func TestUseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("by code marks ticket used", func(t *testing.T) {
		deps := newTestDeps()
		used := liveTicket(3, "USEME123")
		used.IsUsed = true
		used.UsedAt = lo.ToPtr(time.Now())

		deps.tickets.On("FindByCode", mock.Anything, "USEME123").Return(liveTicket(3, "USEME123"), nil).Once()
		deps.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(used, nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByCode(ctx, " useme123 ")

		require.NoError(t, err)
		assert.True(t, resp.IsUsed)
		assert.NotNil(t, resp.UsedAt)
		deps.assertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByCode", mock.Anything, "NOPE0000").Return(nil, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByCode(ctx, "NOPE0000")

		require.ErrorIs(t, err, ErrNotFound)
		deps.tickets.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
	})

	t.Run("second use reports already used", func(t *testing.T) {
		deps := newTestDeps()
		current := liveTicket(3, "USEME123")
		current.IsUsed = true
		current.UsedAt = lo.ToPtr(time.Now())

		deps.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(nil, nil).Once()
		deps.tickets.On("FindByID", mock.Anything, int64(3)).Return(current, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByID(ctx, 3)

		require.ErrorIs(t, err, ErrAlreadyUsed)
		deps.assertExpectations(t)
	})

	t.Run("inactive ticket", func(t *testing.T) {
		deps := newTestDeps()
		current := liveTicket(3, "USEME123")
		current.IsActive = false

		deps.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(nil, nil).Once()
		deps.tickets.On("FindByID", mock.Anything, int64(3)).Return(current, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByID(ctx, 3)

		require.ErrorIs(t, err, ErrInactive)
	})

	t.Run("missing ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("MarkUsed", mock.Anything, int64(99)).Return(nil, nil).Once()
		deps.tickets.On("FindByID", mock.Anything, int64(99)).Return(nil, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByID(ctx, 99)

		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("flags restored between update and re-read retries once", func(t *testing.T) {
		deps := newTestDeps()
		used := liveTicket(3, "USEME123")
		used.IsUsed = true
		used.UsedAt = lo.ToPtr(time.Now())

		deps.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(nil, nil).Once()
		deps.tickets.On("FindByID", mock.Anything, int64(3)).Return(liveTicket(3, "USEME123"), nil).Once()
		deps.tickets.On("MarkUsed", mock.Anything, int64(3)).Return(used, nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).UseTicketByID(ctx, 3)

		require.NoError(t, err)
		assert.True(t, resp.IsUsed)
		deps.assertExpectations(t)
	})
}

func TestUpdateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("code held by another ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByID", mock.Anything, int64(1)).Return(liveTicket(1, "OWNCODE1"), nil).Once()
		deps.tickets.On("FindByCode", mock.Anything, "OTHER002").Return(liveTicket(2, "OTHER002"), nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UpdateTicket(ctx, 1, &request.UpdateTicketRequest{
			Code: lo.ToPtr("OTHER002"),
		})

		require.ErrorIs(t, err, ErrDuplicateCode)
		deps.tickets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("keeping own code is allowed", func(t *testing.T) {
		deps := newTestDeps()
		updated := liveTicket(1, "OWNCODE1")
		updated.EventLocationID = 9

		deps.tickets.On("FindByID", mock.Anything, int64(1)).Return(liveTicket(1, "OWNCODE1"), nil).Once()
		deps.tickets.On("FindByCode", mock.Anything, "OWNCODE1").Return(liveTicket(1, "OWNCODE1"), nil).Once()
		deps.tickets.On("Update", mock.Anything, int64(1), mock.Anything).Return(updated, nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).UpdateTicket(ctx, 1, &request.UpdateTicketRequest{
			Code:            lo.ToPtr("OWNCODE1"),
			EventLocationID: lo.ToPtr(int64(9)),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(9), resp.EventLocationID)
		deps.assertExpectations(t)
	})

	t.Run("malformed code fails validation", func(t *testing.T) {
		deps := newTestDeps()

		_, err := deps.ticketService(new(MockCodeGenerator)).UpdateTicket(ctx, 1, &request.UpdateTicketRequest{
			Code: lo.ToPtr("bad"),
		})

		require.ErrorIs(t, err, ErrValidation)
		deps.tickets.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByID", mock.Anything, int64(404)).Return(nil, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).UpdateTicket(ctx, 404, &request.UpdateTicketRequest{
			IsActive: lo.ToPtr(false),
		})

		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty patch returns current ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByID", mock.Anything, int64(1)).Return(liveTicket(1, "OWNCODE1"), nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).UpdateTicket(ctx, 1, &request.UpdateTicketRequest{})

		require.NoError(t, err)
		assert.Equal(t, "OWNCODE1", resp.Code)
		deps.tickets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetTicketsPaginated(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad page parameters", func(t *testing.T) {
		for _, req := range []request.PaginatedRequest{
			{Page: -1, Size: 10},
			{Page: 0, Size: 0},
			{Page: 0, Size: -5},
			{Page: math.MaxInt, Size: 10},
		} {
			deps := newTestDeps()
			_, err := deps.ticketService(new(MockCodeGenerator)).GetTicketsPaginated(ctx, req)
			require.ErrorIs(t, err, ErrInvalidPagination, "page=%d size=%d", req.Page, req.Size)
			deps.tickets.AssertNotCalled(t, "FindMany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("last partial page", func(t *testing.T) {
		deps := newTestDeps()
		page := []*entity.Ticket{liveTicket(21, "PAGE0021"), liveTicket(22, "PAGE0022")}
		deps.tickets.On("FindMany", mock.Anything, entity.TicketFilter{}, 10, 20).Return(page, nil).Once()
		deps.tickets.On("Count", mock.Anything, entity.TicketFilter{}).Return(int64(22), nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).GetTicketsPaginated(ctx, request.PaginatedRequest{Page: 2, Size: 10})

		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, int64(22), resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
		assert.Equal(t, 2, resp.Pagination.Page)
		deps.assertExpectations(t)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindMany", mock.Anything, entity.TicketFilter{}, 10, 50).Return([]*entity.Ticket{}, nil).Once()
		deps.tickets.On("Count", mock.Anything, entity.TicketFilter{}).Return(int64(22), nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).GetTicketsPaginated(ctx, request.PaginatedRequest{Page: 5, Size: 10})

		require.NoError(t, err)
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})
}

func TestGetTicketStatistics(t *testing.T) {
	ctx := context.Background()
	all := entity.TicketFilter{}
	used := entity.TicketFilter{IsUsed: lo.ToPtr(true)}
	active := entity.TicketFilter{IsActive: lo.ToPtr(true)}

	t.Run("empty table has zero usage rate", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("Count", mock.Anything, all).Return(int64(0), nil).Once()
		deps.tickets.On("Count", mock.Anything, used).Return(int64(0), nil).Once()
		deps.tickets.On("Count", mock.Anything, active).Return(int64(0), nil).Once()

		stats, err := deps.ticketService(new(MockCodeGenerator)).GetTicketStatistics(ctx)

		require.NoError(t, err)
		assert.Zero(t, stats.Total)
		assert.Zero(t, stats.UsageRate)
		deps.assertExpectations(t)
	})

	t.Run("counts and rate", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("Count", mock.Anything, all).Return(int64(25), nil).Once()
		deps.tickets.On("Count", mock.Anything, used).Return(int64(10), nil).Once()
		deps.tickets.On("Count", mock.Anything, active).Return(int64(20), nil).Once()

		stats, err := deps.ticketService(new(MockCodeGenerator)).GetTicketStatistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(25), stats.Total)
		assert.Equal(t, int64(10), stats.Used)
		assert.Equal(t, int64(15), stats.Unused)
		assert.Equal(t, int64(20), stats.Active)
		assert.Equal(t, 40.0, stats.UsageRate)
	})

	t.Run("count failure", func(t *testing.T) {
		deps := newTestDeps()
		boom := errors.New("timeout")
		deps.tickets.On("Count", mock.Anything, mock.Anything).Return(int64(0), boom)

		_, err := deps.ticketService(new(MockCodeGenerator)).GetTicketStatistics(ctx)

		require.ErrorIs(t, err, boom)
	})
}

func TestDeleteAndRestoreTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("delete missing ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByID", mock.Anything, int64(5)).Return(nil, nil).Once()

		err := deps.ticketService(new(MockCodeGenerator)).DeleteTicket(ctx, 5)

		require.ErrorIs(t, err, ErrNotFound)
		deps.tickets.AssertNotCalled(t, "SetDeleted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete sets flag", func(t *testing.T) {
		deps := newTestDeps()
		deleted := liveTicket(5, "DELETE05")
		deleted.Deleted = true
		deps.tickets.On("FindByID", mock.Anything, int64(5)).Return(liveTicket(5, "DELETE05"), nil).Once()
		deps.tickets.On("SetDeleted", mock.Anything, int64(5), true).Return(deleted, nil).Once()

		require.NoError(t, deps.ticketService(new(MockCodeGenerator)).DeleteTicket(ctx, 5))
		deps.assertExpectations(t)
	})

	t.Run("restore clears flag", func(t *testing.T) {
		deps := newTestDeps()
		deleted := liveTicket(5, "DELETE05")
		deleted.Deleted = true
		deps.tickets.On("FindByIDUnscoped", mock.Anything, int64(5)).Return(deleted, nil).Once()
		deps.tickets.On("SetDeleted", mock.Anything, int64(5), false).Return(liveTicket(5, "DELETE05"), nil).Once()

		resp, err := deps.ticketService(new(MockCodeGenerator)).RestoreTicket(ctx, 5)

		require.NoError(t, err)
		assert.False(t, resp.Deleted)
	})

	t.Run("restore colliding with a live code", func(t *testing.T) {
		deps := newTestDeps()
		deleted := liveTicket(5, "DELETE05")
		deleted.Deleted = true
		deps.tickets.On("FindByIDUnscoped", mock.Anything, int64(5)).Return(deleted, nil).Once()
		deps.tickets.On("SetDeleted", mock.Anything, int64(5), false).Return(nil, repository.ErrUniqueViolation).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).RestoreTicket(ctx, 5)

		require.ErrorIs(t, err, ErrDuplicateCode)
	})

	t.Run("restore unknown ticket", func(t *testing.T) {
		deps := newTestDeps()
		deps.tickets.On("FindByIDUnscoped", mock.Anything, int64(5)).Return(nil, nil).Once()

		_, err := deps.ticketService(new(MockCodeGenerator)).RestoreTicket(ctx, 5)

		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSetTicketActive(t *testing.T) {
	deps := newTestDeps()
	inactive := liveTicket(8, "ACTIVE08")
	inactive.IsActive = false
	deps.tickets.On("SetActive", mock.Anything, int64(8), false).Return(inactive, nil).Once()
	deps.tickets.On("SetActive", mock.Anything, int64(9), true).Return(nil, repository.ErrNotFound).Once()

	svc := deps.ticketService(new(MockCodeGenerator))

	resp, err := svc.DeactivateTicket(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	_, err = svc.ActivateTicket(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetTicketQRCode(t *testing.T) {
	deps := newTestDeps()
	deps.tickets.On("FindByCode", mock.Anything, "QRCODE01").Return(liveTicket(1, "QRCODE01"), nil).Once()

	png, err := deps.ticketService(new(MockCodeGenerator)).GetTicketQRCode(context.Background(), "qrcode01")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestUsageRate(t *testing.T) {
	assert.Equal(t, 0.0, usageRate(0, 0))
	assert.Equal(t, 0.0, usageRate(0, 10))
	assert.Equal(t, 100.0, usageRate(4, 4))
	assert.Equal(t, 33.33, usageRate(1, 3))
}
