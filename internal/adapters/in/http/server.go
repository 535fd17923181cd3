// Package http exposes the kitchen engine over REST using Echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kds/internal/core/application/usecases/commands"
	"kds/internal/core/application/usecases/queries"
	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const defaultPerformanceWindowDays = 7

// RecordTransitionHandler executes the transition append path.
type RecordTransitionHandler interface {
	Handle(ctx context.Context, cmd commands.RecordTransitionCommand) (*kitchen.Event, error)
}

// ActiveQueueHandler serves the active kitchen queue projection.
type ActiveQueueHandler interface {
	Handle(ctx context.Context, query queries.GetActiveQueueQuery) ([]queries.GetActiveQueueQueryResponse, error)
}

// PerformanceHandler serves the performance report.
type PerformanceHandler interface {
	Handle(ctx context.Context, query queries.GetPerformanceQuery) (queries.GetPerformanceQueryResponse, error)
}

// TimelineHandler serves an order's event history.
type TimelineHandler interface {
	Handle(ctx context.Context, query queries.GetTimelineQuery) (queries.GetTimelineQueryResponse, error)
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	recordTransitionHandler RecordTransitionHandler
	activeQueueHandler      ActiveQueueHandler
	performanceHandler      PerformanceHandler
	timelineHandler         TimelineHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	recordTransitionHandler RecordTransitionHandler,
	activeQueueHandler ActiveQueueHandler,
	performanceHandler PerformanceHandler,
	timelineHandler TimelineHandler,
) *Server {
	return &Server{
		recordTransitionHandler: recordTransitionHandler,
		activeQueueHandler:      activeQueueHandler,
		performanceHandler:      performanceHandler,
		timelineHandler:         timelineHandler,
	}
}

// RegisterRoutes attaches the engine's endpoints to the Echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/kds/status", s.RecordTransition)
	e.GET("/kds/queue", s.GetQueue)
	e.GET("/kds/performance", s.GetPerformance)
	e.GET("/kds-event/order/:orderId", s.GetTimeline)
}

// Error is the uniform error body.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RecordTransitionRequest is the body of POST /kds/status.
type RecordTransitionRequest struct {
	OrderID string  `json:"orderId"`
	Status  string  `json:"status"`
	ActorID string  `json:"actorId"`
	Notes   *string `json:"notes,omitempty"`
}

// EventResponse is the created timeline entry returned on a successful transition.
type EventResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedMinutes *int      `json:"elapsedMinutes"`
	ActorID        *string   `json:"actorId"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QueueItemResponse is one order line in the queue view.
type QueueItemResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// QueueEventResponse is the latest event of a queued order.
type QueueEventResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedMinutes *int      `json:"elapsedMinutes"`
	ActorID        *string   `json:"actorId"`
}

// QueueOrderResponse is one order in GET /kds/queue, oldest first.
type QueueOrderResponse struct {
	OrderID     string              `json:"orderId"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	Items       []QueueItemResponse `json:"items"`
	LatestEvent *QueueEventResponse `json:"latestEvent"`
}

// ActorPerformanceResponse is one actor's aggregates in the performance report.
type ActorPerformanceResponse struct {
	ActorID    string  `json:"actorId"`
	AvgMinutes float64 `json:"avgMinutes"`
	MaxMinutes int     `json:"maxMinutes"`
	Count      int     `json:"count"`
}

// PerformanceResponse is the body of GET /kds/performance.
type PerformanceResponse struct {
	AveragePrepMinutes float64                    `json:"averagePrepMinutes"`
	TotalCompleted     int                        `json:"totalCompleted"`
	LongestPrepMinutes int                        `json:"longestPrepMinutes"`
	PerActor           []ActorPerformanceResponse `json:"perActor"`
}

// TimelineResponse is the body of GET /kds-event/order/:orderId.
type TimelineResponse struct {
	Events []EventResponse `json:"events"`
}

// RecordTransition handles POST /kds/status - appends a status transition.
func (s *Server) RecordTransition(ctx echo.Context) error {
	var req RecordTransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + req.OrderID,
		})
	}

	status, err := kitchen.StatusFromString(req.Status)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid status: " + req.Status,
		})
	}

	cmd, err := commands.NewRecordTransitionCommand(orderID, status, req.ActorID, req.Notes, commands.RequestMeta{
		IP:        ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	})
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid transition data: " + err.Error(),
		})
	}

	event, err := s.recordTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return transitionError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toEventResponse(event))
}

// GetQueue handles GET /kds/queue - retrieves the active kitchen queue.
func (s *Server) GetQueue(ctx echo.Context) error {
	query := queries.NewGetActiveQueueQuery()

	orders, err := s.activeQueueHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve queue",
		})
	}

	response := make([]QueueOrderResponse, len(orders))
	for i, order := range orders {
		items := make([]QueueItemResponse, len(order.Items))
		for j, item := range order.Items {
			items[j] = QueueItemResponse{Name: item.Name, Quantity: item.Quantity}
		}

		resp := QueueOrderResponse{
			OrderID:   order.OrderID.String(),
			Status:    order.Status.String(),
			CreatedAt: order.CreatedAt,
			Items:     items,
		}
		if order.LatestEvent != nil {
			resp.LatestEvent = &QueueEventResponse{
				ID:             order.LatestEvent.ID.String(),
				Status:         order.LatestEvent.Status.String(),
				Timestamp:      order.LatestEvent.Timestamp,
				ElapsedMinutes: order.LatestEvent.ElapsedMinutes,
				ActorID:        order.LatestEvent.ActorID,
			}
		}

		response[i] = resp
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetPerformance handles GET /kds/performance - retrieves the performance report.
// The days parameter defaults to 7 when absent or not numeric.
func (s *Server) GetPerformance(ctx echo.Context) error {
	days := defaultPerformanceWindowDays
	if raw := ctx.QueryParam("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	query, err := queries.NewGetPerformanceQuery(days)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid days parameter: " + err.Error(),
		})
	}

	report, err := s.performanceHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to compute performance report",
		})
	}

	perActor := make([]ActorPerformanceResponse, len(report.PerActor))
	for i, actor := range report.PerActor {
		perActor[i] = ActorPerformanceResponse{
			ActorID:    actor.ActorID,
			AvgMinutes: actor.AvgMinutes,
			MaxMinutes: actor.MaxMinutes,
			Count:      actor.Count,
		}
	}

	return ctx.JSON(http.StatusOK, PerformanceResponse{
		AveragePrepMinutes: report.AveragePrepMinutes,
		TotalCompleted:     report.TotalCompleted,
		LongestPrepMinutes: report.LongestPrepMinutes,
		PerActor:           perActor,
	})
}

// GetTimeline handles GET /kds-event/order/:orderId - retrieves an order's event history.
func (s *Server) GetTimeline(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + ctx.Param("orderId"),
		})
	}

	query, err := queries.NewGetTimelineQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + err.Error(),
		})
	}

	timeline, err := s.timelineHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve timeline",
		})
	}

	events := make([]EventResponse, len(timeline.Events))
	for i, event := range timeline.Events {
		events[i] = EventResponse{
			ID:             event.ID.String(),
			OrderID:        event.OrderID.String(),
			Status:         event.Status.String(),
			Timestamp:      event.Timestamp,
			ElapsedMinutes: event.ElapsedMinutes,
			ActorID:        event.ActorID,
			Notes:          event.Notes,
			CreatedAt:      event.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, TimelineResponse{Events: events})
}

// transitionError maps domain errors to HTTP statuses. Validation failures and
// illegal transitions are the caller's fault; storage details stay opaque.
func transitionError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to record transition, please try again",
		})
	}
}

func toEventResponse(event *kitchen.Event) EventResponse {
	return EventResponse{
		ID:             event.ID().String(),
		OrderID:        event.OrderID().String(),
		Status:         event.Status().String(),
		Timestamp:      event.Timestamp(),
		ElapsedMinutes: event.ElapsedMinutes(),
		ActorID:        event.ActorID(),
		Notes:          event.Notes(),
		CreatedAt:      event.CreatedAt(),
	}
}
