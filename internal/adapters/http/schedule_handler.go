package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/choreboard/core/internal/domain/rotation"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// ScheduleHandler handles rotation schedule requests
type ScheduleHandler struct {
	scheduleService ports.ScheduleService
	logger          *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService ports.ScheduleService, logger *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// GetSchedule returns the chore's schedule with resolved dates
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.scheduleService.GetSchedule(c.Request().Context(), choreID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// InitializeSchedule creates a fresh schedule for the chore
func (h *ScheduleHandler) InitializeSchedule(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req InitializeScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.scheduleService.InitializeSchedule(c.Request().Context(), choreID, req.CurrentAssignees)
	if err != nil {
		h.logger.Error("Initialize schedule failed", "error", err, "chore_id", choreID)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, view)
}

// AddOccurrence appends one regular occurrence
func (h *ScheduleHandler) AddOccurrence(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.scheduleService.AddOccurrence(c.Request().Context(), choreID)
	if err != nil {
		h.logger.Error("Add occurrence failed", "error", err, "chore_id", choreID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// AddSpecialOccurrence inserts an ad-hoc appointment
func (h *ScheduleHandler) AddSpecialOccurrence(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.AddSpecialOccurrenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.scheduleService.AddSpecialOccurrence(c.Request().Context(), choreID, req)
	if err != nil {
		h.logger.Error("Add special occurrence failed", "error", err, "chore_id", choreID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// DeleteOccurrence removes one occurrence
func (h *ScheduleHandler) DeleteOccurrence(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	view, err := h.scheduleService.DeleteOccurrence(c.Request().Context(), choreID, number)
	if err != nil {
		h.logger.Error("Delete occurrence failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// MoveOccurrence swaps an occurrence with its neighbor
func (h *ScheduleHandler) MoveOccurrence(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	var req MoveOccurrenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	direction := rotation.Direction(req.Direction)
	if direction != rotation.DirectionUp && direction != rotation.DirectionDown {
		return echo.NewHTTPError(http.StatusBadRequest, "Direction must be up or down")
	}

	view, err := h.scheduleService.MoveOccurrence(c.Request().Context(), choreID, number, direction)
	if err != nil {
		h.logger.Error("Move occurrence failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// SkipOccurrence toggles the skipped flag
func (h *ScheduleHandler) SkipOccurrence(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	view, err := h.scheduleService.SkipOccurrence(c.Request().Context(), choreID, number)
	if err != nil {
		h.logger.Error("Skip occurrence failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// SetMember assigns a member to one position of an occurrence
func (h *ScheduleHandler) SetMember(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.SetMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.scheduleService.SetMember(c.Request().Context(), choreID, req)
	if err != nil {
		h.logger.Error("Set member failed", "error", err, "chore_id", choreID, "occurrence", req.OccurrenceNumber)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// SetNotes replaces the notes of an occurrence
func (h *ScheduleHandler) SetNotes(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	var req SetNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.scheduleService.SetNotes(c.Request().Context(), choreID, number, req.Notes)
	if err != nil {
		h.logger.Error("Set notes failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// SetOccurrenceDate stores an explicit date on a special or irregular occurrence
func (h *ScheduleHandler) SetOccurrenceDate(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	var req SetDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.scheduleService.SetOccurrenceDate(c.Request().Context(), choreID, number, req.Date)
	if err != nil {
		h.logger.Error("Set occurrence date failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// ResetToRegular reverts a special occurrence to a regular one
func (h *ScheduleHandler) ResetToRegular(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}

	view, err := h.scheduleService.ResetToRegular(c.Request().Context(), choreID, number)
	if err != nil {
		h.logger.Error("Reset to regular failed", "error", err, "chore_id", choreID, "occurrence", number)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// AutoFill assigns every open slot from the eligible roster
func (h *ScheduleHandler) AutoFill(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.scheduleService.AutoFill(c.Request().Context(), choreID)
	if err != nil {
		h.logger.Error("Auto fill failed", "error", err, "chore_id", choreID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// LinkItem attaches an inventory item to an occurrence
func (h *ScheduleHandler) LinkItem(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return err
	}

	view, err := h.scheduleService.LinkItem(c.Request().Context(), choreID, number, itemID)
	if err != nil {
		h.logger.Error("Link item failed", "error", err, "chore_id", choreID, "occurrence", number, "item_id", itemID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// UnlinkItem detaches an inventory item from an occurrence
func (h *ScheduleHandler) UnlinkItem(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return err
	}

	view, err := h.scheduleService.UnlinkItem(c.Request().Context(), choreID, number, itemID)
	if err != nil {
		h.logger.Error("Unlink item failed", "error", err, "chore_id", choreID, "occurrence", number, "item_id", itemID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// CalendarFeed renders the schedule as an iCalendar document
func (h *ScheduleHandler) CalendarFeed(c echo.Context) error {
	choreID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	feed, err := h.scheduleService.CalendarFeed(c.Request().Context(), choreID)
	if err != nil {
		h.logger.Error("Calendar feed failed", "error", err, "chore_id", choreID)
		return domainError(err)
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func parseNumber(c echo.Context) (int, error) {
	id, err := parseID(c, "number")
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// Request types

type InitializeScheduleRequest struct {
	CurrentAssignees []int64 `json:"current_assignees"`
}

type MoveOccurrenceRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type SetNotesRequest struct {
	Notes string `json:"notes"`
}

type SetDateRequest struct {
	Date *time.Time `json:"date"`
}
