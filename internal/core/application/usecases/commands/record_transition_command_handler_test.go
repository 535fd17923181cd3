package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"kds/internal/core/application/usecases/commands"
	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/core/ports"
	"kds/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*kitchen.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*kitchen.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*kitchen.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*kitchen.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, aggregate *kitchen.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) FindDrifted(ctx context.Context) ([]ports.Drift, error) {
	args := m.Called(ctx)
	if d, ok := args.Get(0).([]ports.Drift); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventRepository struct{ mock.Mock }

func (m *MockEventRepository) Add(ctx context.Context, event *kitchen.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetLatest(ctx context.Context, orderID kernel.UUID) (*kitchen.Event, error) {
	args := m.Called(ctx, orderID)
	if e, ok := args.Get(0).(*kitchen.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEventRepository) GetTimeline(ctx context.Context, orderID kernel.UUID) ([]*kitchen.Event, error) {
	args := m.Called(ctx, orderID)
	if e, ok := args.Get(0).([]*kitchen.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) EventRepository() ports.EventRepository {
	args := m.Called()
	return args.Get(0).(ports.EventRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockAuditPublisher struct{ mock.Mock }

func (m *MockAuditPublisher) Publish(ctx context.Context, entry ports.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingEventAt(t *testing.T, orderID kernel.UUID, at time.Time) *kitchen.Event {
	t.Helper()
	event, err := kitchen.NewEvent(kernel.NewUUID(), orderID, kitchen.Pending, at, nil, nil, nil)
	require.NoError(t, err)
	return event
}

func TestRecordTransitionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.InProgress, "chef-1", nil, commands.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)

	order, err := kitchen.RestoreOrder(orderID, kitchen.Pending, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	prev := pendingEventAt(t, orderID, time.Now().Add(-5*time.Minute))

	orderRepo := new(MockOrderRepository)
	eventRepo := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EventRepository").Return(eventRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).Return(order, nil).Once()
	eventRepo.On("GetLatest", ctx, orderID).Return(prev, nil).Once()
	eventRepo.On("Add", ctx, mock.AnythingOfType("*kitchen.Event")).Return(nil).Once()
	orderRepo.On("Update", ctx, order).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	audit := new(MockAuditPublisher)
	audit.On("Publish", ctx, mock.MatchedBy(func(entry ports.AuditEntry) bool {
		return entry.UserID == "chef-1" &&
			entry.Action == "kds.status.in_progress" &&
			entry.ResourceType == "order" &&
			entry.ResourceID == orderID.String() &&
			entry.IP == "10.0.0.1"
	})).Return(nil).Once()

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	event, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, kitchen.InProgress, event.Status())
	require.NotNil(t, event.ElapsedMinutes())
	assert.Equal(t, 5, *event.ElapsedMinutes())
	require.NotNil(t, event.ActorID())
	assert.Equal(t, "chef-1", *event.ActorID())
	assert.Equal(t, kitchen.InProgress, order.Status())

	orderRepo.AssertExpectations(t)
	eventRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestRecordTransitionCommandHandler_Handle_FirstEventMustBePending(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.InProgress, "chef-1", nil, commands.RequestMeta{})
	require.NoError(t, err)

	order, err := kitchen.RestoreOrder(orderID, kitchen.Pending, time.Now())
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	eventRepo := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EventRepository").Return(eventRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).Return(order, nil).Once()
	eventRepo.On("GetLatest", ctx, orderID).Return(nil, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()
	audit := new(MockAuditPublisher)

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	event, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Nil(t, event)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Contains(t, err.Error(), "new orders must start in the pending status")

	audit.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	eventRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRecordTransitionCommandHandler_Handle_NoOpTransitionRejected(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.Ready, "chef-1", nil, commands.RequestMeta{})
	require.NoError(t, err)

	order, err := kitchen.RestoreOrder(orderID, kitchen.Ready, time.Now())
	require.NoError(t, err)

	elapsed := 4
	prev, err := kitchen.RestoreEvent(
		kernel.NewUUID(), orderID, kitchen.Ready,
		time.Now().Add(-time.Minute), &elapsed, nil, nil, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	eventRepo := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EventRepository").Return(eventRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).Return(order, nil).Once()
	eventRepo.On("GetLatest", ctx, orderID).Return(prev, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()
	audit := new(MockAuditPublisher)

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in the ready status")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRecordTransitionCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.InProgress, "chef-1", nil, commands.RequestMeta{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).
		Return(nil, errs.NewObjectNotFoundError("order", orderID.String())).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()
	audit := new(MockAuditPublisher)

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestRecordTransitionCommandHandler_Handle_AuditFailureDoesNotFailTransition(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.Cancelled, "manager-9", nil, commands.RequestMeta{})
	require.NoError(t, err)

	order, err := kitchen.RestoreOrder(orderID, kitchen.Pending, time.Now())
	require.NoError(t, err)
	prev := pendingEventAt(t, orderID, time.Now().Add(-2*time.Minute))

	orderRepo := new(MockOrderRepository)
	eventRepo := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EventRepository").Return(eventRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).Return(order, nil).Once()
	eventRepo.On("GetLatest", ctx, orderID).Return(prev, nil).Once()
	eventRepo.On("Add", ctx, mock.AnythingOfType("*kitchen.Event")).Return(nil).Once()
	orderRepo.On("Update", ctx, order).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	audit := new(MockAuditPublisher)
	audit.On("Publish", ctx, mock.Anything).Return(errors.New("broker unreachable")).Once()

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	event, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, kitchen.Cancelled, event.Status())
	audit.AssertExpectations(t)
}

func TestRecordTransitionCommandHandler_Handle_StorageFailureOnAppend(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRecordTransitionCommand(
		orderID, kitchen.InProgress, "chef-1", nil, commands.RequestMeta{})
	require.NoError(t, err)

	order, err := kitchen.RestoreOrder(orderID, kitchen.Pending, time.Now())
	require.NoError(t, err)
	prev := pendingEventAt(t, orderID, time.Now().Add(-time.Minute))

	orderRepo := new(MockOrderRepository)
	eventRepo := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EventRepository").Return(eventRepo)
	orderRepo.On("GetForUpdate", ctx, orderID).Return(order, nil).Once()
	eventRepo.On("GetLatest", ctx, orderID).Return(prev, nil).Once()
	eventRepo.On("Add", ctx, mock.AnythingOfType("*kitchen.Event")).
		Return(errors.New("insert failed")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()
	audit := new(MockAuditPublisher)

	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	audit.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRecordTransitionCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.RecordTransitionCommand{} // not constructed properly

	factory := new(MockUoWFactory)
	audit := new(MockAuditPublisher)
	h := commands.NewRecordTransitionCommandHandler(factory, audit, testLogger())

	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
}
