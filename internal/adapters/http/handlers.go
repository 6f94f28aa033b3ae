package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// HouseholdHandler handles household-related requests
type HouseholdHandler struct {
	householdService ports.HouseholdService
	activityService  ports.ActivityService
	logger           *logger.Logger
}

// NewHouseholdHandler creates a new household handler
func NewHouseholdHandler(householdService ports.HouseholdService, activityService ports.ActivityService, logger *logger.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		householdService: householdService,
		activityService:  activityService,
		logger:           logger,
	}
}

// CreateHousehold handles household creation
func (h *HouseholdHandler) CreateHousehold(c echo.Context) error {
	var req ports.CreateHouseholdRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	household, err := h.householdService.CreateHousehold(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create household failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, household)
}

// GetHousehold handles getting a household by ID
func (h *HouseholdHandler) GetHousehold(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	household, err := h.householdService.GetHousehold(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, household)
}

// UpdateHousehold handles updating a household
func (h *HouseholdHandler) UpdateHousehold(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateHouseholdRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	household, err := h.householdService.UpdateHousehold(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update household failed", "error", err, "household_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, household)
}

// DeleteHousehold handles deleting a household
func (h *HouseholdHandler) DeleteHousehold(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.householdService.DeleteHousehold(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete household failed", "error", err, "household_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Household deleted successfully"})
}

// ListHouseholds handles listing households
func (h *HouseholdHandler) ListHouseholds(c echo.Context) error {
	filter := ports.HouseholdFilter{}

	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}
	filter.Limit, filter.Offset = parsePagination(c)

	households, err := h.householdService.ListHouseholds(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List households failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve households")
	}

	return c.JSON(http.StatusOK, households)
}

// Connect handles connecting a household via an invite code
func (h *HouseholdHandler) Connect(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	other, err := h.householdService.ConnectByInviteCode(c.Request().Context(), id, req.InviteCode)
	if err != nil {
		h.logger.Error("Connect household failed", "error", err, "household_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, other)
}

// Disconnect handles disconnecting two households
func (h *HouseholdHandler) Disconnect(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	otherID, err := parseID(c, "other_id")
	if err != nil {
		return err
	}

	if err := h.householdService.Disconnect(c.Request().Context(), id, otherID); err != nil {
		h.logger.Error("Disconnect household failed", "error", err, "household_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Households disconnected"})
}

// ListConnections handles listing a household's connections
func (h *HouseholdHandler) ListConnections(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	connections, err := h.householdService.ListConnections(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, connections)
}

// ListActivity handles listing the household history log
func (h *HouseholdHandler) ListActivity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	filter := ports.ActivityFilter{}
	if action := c.QueryParam("action"); action != "" {
		filter.Action = &action
	}
	if memberStr := c.QueryParam("member_id"); memberStr != "" {
		memberID, err := strconv.ParseInt(memberStr, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid member_id parameter")
		}
		filter.MemberID = &memberID
	}
	filter.Limit, filter.Offset = parsePagination(c)

	entries, err := h.activityService.ListActivity(c.Request().Context(), id, filter)
	if err != nil {
		h.logger.Error("List activity failed", "error", err, "household_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve activity")
	}

	return c.JSON(http.StatusOK, entries)
}

// MemberHandler handles member-related requests
type MemberHandler struct {
	memberService ports.MemberService
	logger        *logger.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService ports.MemberService, logger *logger.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// CreateMember handles member creation
func (h *MemberHandler) CreateMember(c echo.Context) error {
	var req ports.CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.memberService.CreateMember(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create member failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, member)
}

// GetMember handles getting a member by ID
func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	member, err := h.memberService.GetMember(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, member)
}

// UpdateMember handles updating a member
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.memberService.UpdateMember(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update member failed", "error", err, "member_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, member)
}

// DeleteMember handles deleting a member
func (h *MemberHandler) DeleteMember(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.memberService.DeleteMember(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete member failed", "error", err, "member_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Member deleted successfully"})
}

// ListMembers handles listing the members of a household
func (h *MemberHandler) ListMembers(c echo.Context) error {
	householdID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	members, err := h.memberService.ListMembers(c.Request().Context(), householdID)
	if err != nil {
		h.logger.Error("List members failed", "error", err, "household_id", householdID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve members")
	}

	return c.JSON(http.StatusOK, members)
}

// ExcludeFromRotation handles excluding a member from a chore's rotation
func (h *MemberHandler) ExcludeFromRotation(c echo.Context) error {
	choreID, err := parseID(c, "chore_id")
	if err != nil {
		return err
	}
	memberID, err := parseID(c, "member_id")
	if err != nil {
		return err
	}

	if err := h.memberService.ExcludeFromRotation(c.Request().Context(), choreID, memberID); err != nil {
		h.logger.Error("Exclude from rotation failed", "error", err, "chore_id", choreID, "member_id", memberID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Member excluded from rotation"})
}

// IncludeInRotation handles restoring a member to a chore's rotation
func (h *MemberHandler) IncludeInRotation(c echo.Context) error {
	choreID, err := parseID(c, "chore_id")
	if err != nil {
		return err
	}
	memberID, err := parseID(c, "member_id")
	if err != nil {
		return err
	}

	if err := h.memberService.IncludeInRotation(c.Request().Context(), choreID, memberID); err != nil {
		h.logger.Error("Include in rotation failed", "error", err, "chore_id", choreID, "member_id", memberID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Member included in rotation"})
}

// Utility functions and helper types

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" parameter")
	}
	return id, nil
}

func parsePagination(c echo.Context) (limit, offset int) {
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if n, err := strconv.Atoi(offsetStr); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// domainError maps domain sentinel errors to HTTP status codes.
func domainError(err error) error {
	switch {
	case errors.Is(err, entities.ErrHouseholdNotFound),
		errors.Is(err, entities.ErrMemberNotFound),
		errors.Is(err, entities.ErrChoreNotFound),
		errors.Is(err, entities.ErrOccurrenceNotFound),
		errors.Is(err, entities.ErrItemNotFound),
		errors.Is(err, entities.ErrLoanNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrMemberAlreadyAssigned),
		errors.Is(err, entities.ErrItemAlreadyLent),
		errors.Is(err, entities.ErrInvalidLoanTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrHouseholdsNotConnected),
		errors.Is(err, entities.ErrItemNotLendable):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, entities.ErrInvalidRecurrence),
		errors.Is(err, entities.ErrOwnHouseholdLoan):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		// Anything unrecognized is an infrastructure fault, not a client error.
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// Request/Response types

type ConnectRequest struct {
	InviteCode string `json:"invite_code" validate:"required,uuid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
