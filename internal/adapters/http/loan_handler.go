package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// LoanHandler handles inventory item and loan requests
type LoanHandler struct {
	loanService ports.LoanService
	logger      *logger.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService ports.LoanService, logger *logger.Logger) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// CreateItem handles item creation
func (h *LoanHandler) CreateItem(c echo.Context) error {
	var req ports.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.loanService.CreateItem(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create item failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem handles getting an item by ID
func (h *LoanHandler) GetItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.loanService.GetItem(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// UpdateItem handles updating an item
func (h *LoanHandler) UpdateItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.loanService.UpdateItem(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update item failed", "error", err, "item_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles deleting an item
func (h *LoanHandler) DeleteItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.loanService.DeleteItem(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete item failed", "error", err, "item_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

// ListItems handles listing the items of a household
func (h *LoanHandler) ListItems(c echo.Context) error {
	householdID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.loanService.ListItems(c.Request().Context(), householdID)
	if err != nil {
		h.logger.Error("List items failed", "error", err, "household_id", householdID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve items")
	}

	return c.JSON(http.StatusOK, items)
}

// RequestLoan handles a borrow request for a lendable item
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req ports.RequestLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loan, err := h.loanService.RequestLoan(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Request loan failed", "error", err, "item_id", req.ItemID)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, loan)
}

// AcceptLoan handles accepting a pending loan
func (h *LoanHandler) AcceptLoan(c echo.Context) error {
	return h.transition(c, h.loanService.AcceptLoan)
}

// DeclineLoan handles declining a pending loan
func (h *LoanHandler) DeclineLoan(c echo.Context) error {
	return h.transition(c, h.loanService.DeclineLoan)
}

// ReturnLoan handles marking an accepted loan as returned
func (h *LoanHandler) ReturnLoan(c echo.Context) error {
	return h.transition(c, h.loanService.ReturnLoan)
}

// ListLoans handles listing loans
func (h *LoanHandler) ListLoans(c echo.Context) error {
	filter := ports.LoanFilter{}

	if householdStr := c.QueryParam("household_id"); householdStr != "" {
		householdID, err := strconv.ParseInt(householdStr, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid household_id parameter")
		}
		filter.HouseholdID = &householdID
	}
	if status := c.QueryParam("status"); status != "" {
		loanStatus := entities.LoanStatus(status)
		if !loanStatus.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &loanStatus
	}
	if c.QueryParam("open") == "true" {
		filter.OpenOnly = true
	}
	filter.Limit, filter.Offset = parsePagination(c)

	loans, err := h.loanService.ListLoans(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List loans failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve loans")
	}

	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) transition(c echo.Context, apply func(ctx context.Context, loanID int64) (*entities.Loan, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	loan, err := apply(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Loan transition failed", "error", err, "loan_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, loan)
}
