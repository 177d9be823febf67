package http

import (
	"errors"
	"net/http"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/application/usecases/queries"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Server exposes the consolidation use cases over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	approveOrderHandler     commands.ApproveOrderCommandHandler
	rejectOrderHandler      commands.RejectOrderCommandHandler
	replaceLineItemsHandler commands.ReplaceLineItemsCommandHandler
	assignDriverHandler     commands.AssignDriverCommandHandler
	startDeliveryHandler    commands.StartDeliveryCommandHandler
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler
	resyncLocalityHandler   commands.ResyncLocalityCommandHandler

	// Query handlers
	getOrderHandler       queries.GetOrderQueryHandler
	getBatchHandler       queries.GetBatchQueryHandler
	getOpenBatchesHandler queries.GetOpenBatchesQueryHandler

	// catalog fills in unit prices omitted from line item edits
	catalog ports.ProductCatalog
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	approveOrderHandler commands.ApproveOrderCommandHandler,
	rejectOrderHandler commands.RejectOrderCommandHandler,
	replaceLineItemsHandler commands.ReplaceLineItemsCommandHandler,
	assignDriverHandler commands.AssignDriverCommandHandler,
	startDeliveryHandler commands.StartDeliveryCommandHandler,
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler,
	resyncLocalityHandler commands.ResyncLocalityCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getBatchHandler queries.GetBatchQueryHandler,
	getOpenBatchesHandler queries.GetOpenBatchesQueryHandler,
	catalog ports.ProductCatalog,
) *Server {
	return &Server{
		approveOrderHandler:     approveOrderHandler,
		rejectOrderHandler:      rejectOrderHandler,
		replaceLineItemsHandler: replaceLineItemsHandler,
		assignDriverHandler:     assignDriverHandler,
		startDeliveryHandler:    startDeliveryHandler,
		completeDeliveryHandler: completeDeliveryHandler,
		resyncLocalityHandler:   resyncLocalityHandler,
		getOrderHandler:         getOrderHandler,
		getBatchHandler:         getBatchHandler,
		getOpenBatchesHandler:   getOpenBatchesHandler,
		catalog:                 catalog,
	}
}

// RegisterRoutes mounts all API routes on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/approve", s.ApproveOrder)
	api.POST("/orders/:orderId/reject", s.RejectOrder)
	api.PUT("/orders/:orderId/items", s.ReplaceLineItems)

	api.GET("/batches/open", s.GetOpenBatches)
	api.GET("/batches/:batchId", s.GetBatch)
	api.POST("/batches/:batchId/assign", s.AssignDriver)
	api.POST("/batches/:batchId/start", s.StartDelivery)
	api.POST("/batches/:batchId/complete", s.CompleteDelivery)

	api.POST("/localities/:locality/resync", s.ResyncLocality)
}

// ApproveOrder handles POST /api/v1/orders/{orderId}/approve.
func (s *Server) ApproveOrder(ctx echo.Context) error {
	orderID, err := parseUUIDParam(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewApproveOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.approveOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectOrder handles POST /api/v1/orders/{orderId}/reject.
func (s *Server) RejectOrder(ctx echo.Context) error {
	orderID, err := parseUUIDParam(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewRejectOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.rejectOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReplaceLineItems handles PUT /api/v1/orders/{orderId}/items.
func (s *Server) ReplaceLineItems(ctx echo.Context) error {
	orderID, err := parseUUIDParam(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var request ReplaceLineItemsRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	lineItems := make([]order.LineItem, 0, len(request.Items))
	for _, item := range request.Items {
		productID, err := kernel.UUIDFromBytes(item.ProductID[:])
		if err != nil {
			return badRequest(ctx, "Invalid product ID")
		}

		// An omitted price is filled in from the catalog.
		var unitPrice decimal.Decimal
		if item.UnitPrice == "" {
			unitPrice, err = s.catalog.UnitPrice(ctx.Request().Context(), productID)
			if err != nil {
				return respondError(ctx, err)
			}
		} else {
			unitPrice, err = decimal.NewFromString(item.UnitPrice)
			if err != nil {
				return badRequest(ctx, "Invalid unit price")
			}
		}

		lineItem, err := order.NewLineItem(productID, item.Quantity, unitPrice)
		if err != nil {
			return badRequest(ctx, err.Error())
		}
		lineItems = append(lineItems, lineItem)
	}

	cmd, err := commands.NewReplaceLineItemsCommand(orderID, lineItems)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.replaceLineItemsHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignDriver handles POST /api/v1/batches/{batchId}/assign.
func (s *Server) AssignDriver(ctx echo.Context) error {
	batchID, err := parseUUIDParam(ctx, "batchId")
	if err != nil {
		return badRequest(ctx, "Invalid batch ID")
	}

	var request AssignDriverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	driverID, err := kernel.UUIDFromBytes(request.DriverID[:])
	if err != nil {
		return badRequest(ctx, "Invalid driver ID")
	}

	cmd, err := commands.NewAssignDriverCommand(batchID, driverID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.assignDriverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// StartDelivery handles POST /api/v1/batches/{batchId}/start.
func (s *Server) StartDelivery(ctx echo.Context) error {
	batchID, err := parseUUIDParam(ctx, "batchId")
	if err != nil {
		return badRequest(ctx, "Invalid batch ID")
	}

	cmd, err := commands.NewStartDeliveryCommand(batchID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.startDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteDelivery handles POST /api/v1/batches/{batchId}/complete.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	batchID, err := parseUUIDParam(ctx, "batchId")
	if err != nil {
		return badRequest(ctx, "Invalid batch ID")
	}

	cmd, err := commands.NewCompleteDeliveryCommand(batchID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ResyncLocality handles POST /api/v1/localities/{locality}/resync.
func (s *Server) ResyncLocality(ctx echo.Context) error {
	cmd, err := commands.NewResyncLocalityCommand(ctx.Param("locality"))
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.resyncLocalityHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := parseUUIDParam(ctx, "orderId")
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderModel(response))
}

// GetBatch handles GET /api/v1/batches/{batchId}.
func (s *Server) GetBatch(ctx echo.Context) error {
	batchID, err := parseUUIDParam(ctx, "batchId")
	if err != nil {
		return badRequest(ctx, "Invalid batch ID")
	}

	query, err := queries.NewGetBatchQuery(batchID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := s.getBatchHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toBatchModel(response))
}

// GetOpenBatches handles GET /api/v1/batches/open.
// An optional locality query parameter narrows the listing.
func (s *Server) GetOpenBatches(ctx echo.Context) error {
	query := queries.NewGetOpenBatchesQuery()
	if locality := ctx.QueryParam("locality"); locality != "" {
		query = queries.NewGetOpenBatchesQueryForLocality(locality)
	}

	rows, err := s.getOpenBatchesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]OpenBatch, 0, len(rows))
	for _, row := range rows {
		response = append(response, OpenBatch{
			ID:              row.ID.Bytes(),
			Locality:        row.Locality,
			AggregateWeight: row.AggregateWeight.String(),
			Capacity:        row.Capacity.String(),
			FillRatio:       row.FillRatio,
			CreatedAt:       row.CreatedAt,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

func parseUUIDParam(ctx echo.Context, name string) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param(name))
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// respondError maps use case failures to HTTP status codes.
func respondError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidWeight):
		status = http.StatusUnprocessableEntity
	// Input validation fails at command construction, so a ValueIsInvalid
	// surfacing from a handler is a state conflict, not a bad request.
	case errors.Is(err, commands.ErrAllocationRace),
		errors.Is(err, batch.ErrCapacityExceeded),
		errors.Is(err, batch.ErrBatchNotOpen),
		errors.Is(err, batch.ErrBatchNotReadyForAssignment),
		errors.Is(err, order.ErrOrderAlreadyBatched),
		errors.Is(err, order.ErrLineItemsLocked),
		errors.Is(err, errs.ErrValueIsInvalid):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired):
		status = http.StatusBadRequest
	}

	return ctx.JSON(status, Error{
		Code:    status,
		Message: err.Error(),
	})
}
