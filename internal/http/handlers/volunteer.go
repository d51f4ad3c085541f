package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/http/response"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/ctxutil"
	"github.com/zhiyuanbang/gaokao-backend/internal/services"
)

type VolunteerHandler struct {
	volunteerService services.VolunteerService
}

func NewVolunteerHandler(volunteerService services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: volunteerService}
}

// statusFor maps engine error kinds to HTTP statuses and stable codes the
// mini-app switches on.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrOwnerNotFound):
		return http.StatusNotFound, "owner_not_found"
	case errors.Is(err, services.ErrChoiceNotFound):
		return http.StatusNotFound, "choice_not_found"
	case errors.Is(err, services.ErrGroupNotFound):
		return http.StatusNotFound, "group_not_found"
	case errors.Is(err, services.ErrDuplicateChoice):
		return http.StatusConflict, "duplicate_choice"
	case errors.Is(err, services.ErrGroupCapacityExceeded):
		return http.StatusConflict, "group_capacity_exceeded"
	case errors.Is(err, services.ErrRaceConflict):
		return http.StatusConflict, "race_conflict"
	case errors.Is(err, services.ErrBoundary):
		return http.StatusBadRequest, "boundary"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, code := statusFor(err)
	response.RespondError(c, status, code, err)
}

func actingUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// POST /api/volunteers
func (vh *VolunteerHandler) CreateChoice(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var req services.CreateChoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	choice, err := vh.volunteerService.CreateChoice(c.Request.Context(), nil, userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"choice": choice})
}

// GET /api/volunteers
func (vh *VolunteerHandler) ListChoices(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	list, err := vh.volunteerService.ListChoices(c.Request.Context(), nil, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// DELETE /api/volunteers/:id
func (vh *VolunteerHandler) DeleteChoice(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	choiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := vh.volunteerService.DeleteChoice(c.Request.Context(), nil, userID, choiceID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/volunteers/batch-delete
// body: { "ids": ["...", "..."] }
func (vh *VolunteerHandler) DeleteChoices(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := vh.volunteerService.DeleteChoices(c.Request.Context(), nil, userID, req.IDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/volunteers/:id/move
// body: { "direction": "up" | "down" }
func (vh *VolunteerHandler) MoveItem(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	choiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Direction != services.DirectionUp && req.Direction != services.DirectionDown {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("direction must be up or down"))
		return
	}
	choice, err := vh.volunteerService.MoveItem(c.Request.Context(), nil, userID, choiceID, req.Direction)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"choice": choice})
}

// POST /api/volunteer-groups/:rank/move
// body: { "direction": "up" | "down" }
func (vh *VolunteerHandler) MoveGroup(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	rank, err := strconv.Atoi(c.Param("rank"))
	if err != nil || rank < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid group rank"))
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Direction != services.DirectionUp && req.Direction != services.DirectionDown {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("direction must be up or down"))
		return
	}
	updated, err := vh.volunteerService.MoveGroup(c.Request.Context(), nil, userID, rank, req.Direction)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": updated})
}
