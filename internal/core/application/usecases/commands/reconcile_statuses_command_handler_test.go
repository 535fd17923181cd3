package commands_test

import (
	"errors"
	"testing"
	"time"

	"kds/internal/core/application/usecases/commands"
	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconcileStatusesCommandHandler_Handle_CorrectsDrift(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewReconcileStatusesCommand()

	driftedID := kernel.NewUUID()
	drifted, err := kitchen.RestoreOrder(driftedID, kitchen.Pending, time.Now())
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	orderRepo.On("FindDrifted", ctx).Return([]ports.Drift{
		{OrderID: driftedID, Cached: kitchen.Pending, Actual: kitchen.Served},
	}, nil).Once()
	orderRepo.On("Get", ctx, driftedID).Return(drifted, nil).Once()
	orderRepo.On("Update", ctx, drifted).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReconcileStatusesCommandHandler(factory, testLogger())
	corrected, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, corrected)
	// the cache always yields to the event log
	assert.Equal(t, kitchen.Served, drifted.Status())

	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestReconcileStatusesCommandHandler_Handle_NoDriftIsIdempotent(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewReconcileStatusesCommand()

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	// two consecutive runs with nothing to repair: zero writes both times
	factory.On("Create").Return(uow).Twice()
	uow.On("Begin", ctx).Return(nil).Twice()
	uow.On("OrderRepository").Return(orderRepo)
	orderRepo.On("FindDrifted", ctx).Return([]ports.Drift{}, nil).Twice()
	uow.On("Commit", ctx).Return(nil).Twice()
	uow.On("Rollback", ctx).Return(nil).Twice()

	h := commands.NewReconcileStatusesCommandHandler(factory, testLogger())

	for range 2 {
		corrected, err := h.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, corrected)
	}

	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func TestReconcileStatusesCommandHandler_Handle_FindDriftedError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewReconcileStatusesCommand()

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	orderRepo.On("FindDrifted", ctx).Return(nil, errors.New("query failed")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReconcileStatusesCommandHandler(factory, testLogger())
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestReconcileStatusesCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.ReconcileStatusesCommand{} // not constructed properly

	factory := new(MockUoWFactory)
	h := commands.NewReconcileStatusesCommandHandler(factory, testLogger())

	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
}
