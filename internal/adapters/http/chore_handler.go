package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// ChoreHandler handles chore-related requests
type ChoreHandler struct {
	choreService ports.ChoreService
	logger       *logger.Logger
}

// NewChoreHandler creates a new chore handler
func NewChoreHandler(choreService ports.ChoreService, logger *logger.Logger) *ChoreHandler {
	return &ChoreHandler{
		choreService: choreService,
		logger:       logger,
	}
}

// CreateChore handles chore creation
func (h *ChoreHandler) CreateChore(c echo.Context) error {
	var req ports.CreateChoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	chore, err := h.choreService.CreateChore(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create chore failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, chore)
}

// GetChore handles getting a chore by ID
func (h *ChoreHandler) GetChore(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	chore, err := h.choreService.GetChore(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, chore)
}

// UpdateChore handles updating a chore
func (h *ChoreHandler) UpdateChore(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateChoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	chore, err := h.choreService.UpdateChore(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update chore failed", "error", err, "chore_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, chore)
}

// DeleteChore handles deleting a chore
func (h *ChoreHandler) DeleteChore(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.choreService.DeleteChore(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete chore failed", "error", err, "chore_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Chore deleted successfully"})
}

// ListChores handles listing the chores of a household
func (h *ChoreHandler) ListChores(c echo.Context) error {
	householdID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	filter := ports.ChoreFilter{}
	if unit := c.QueryParam("unit"); unit != "" {
		filter.Unit = &unit
	}
	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}
	filter.Limit, filter.Offset = parsePagination(c)

	chores, err := h.choreService.ListChores(c.Request().Context(), householdID, filter)
	if err != nil {
		h.logger.Error("List chores failed", "error", err, "household_id", householdID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve chores")
	}

	return c.JSON(http.StatusOK, chores)
}
