package leasing

import (
	"errors"
	"net/http"

	"playerhire/internal/domain"
	"playerhire/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	listings, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"players": listings})
}

func (h *Handler) ListAvailable(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}
	q.Status = string(domain.ListingAvailable)

	listings, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"players": listings})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"player": l})
}

func (h *Handler) Create(c *gin.Context) {
	actor := actorFrom(c)

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	owner := actor.UserID
	if req.OwnerUserID != 0 && req.OwnerUserID != actor.UserID {
		if !actor.IsAdmin() {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only admins can list players for other users")
			return
		}
		owner = req.OwnerUserID
	}

	l, err := h.service.Create(c.Request.Context(), owner, req.DescriptiveFields)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"player": l})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := actorFrom(c)

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.Status != nil && !actor.IsAdmin() {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only admins can override listing status")
		return
	}

	l, err := h.service.Update(c.Request.Context(), id, req.DescriptiveFields, req.Status, actor, EditGuard(actor))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"player": l})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Hire(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := actorFrom(c)

	var req HireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Hours == nil {
		writeError(c, ErrInvalidHours)
		return
	}

	l, err := h.service.Hire(c.Request.Context(), id, actor, *req.Hours, HireGuard(actor))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"player": l})
}

func (h *Handler) Return(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := actorFrom(c)

	l, err := h.service.Return(c.Request.Context(), id, actor, ReturnGuard(actor))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"player": l})
}

func (h *Handler) Rate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Rating == nil {
		writeError(c, ErrInvalidRating)
		return
	}

	l, err := h.service.Rate(c.Request.Context(), id, actorFrom(c), *req.Rating)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"player": l})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid player listing ID")
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		UserID: c.GetInt64("user_id"),
		Role:   domain.UserRole(c.GetString("role")),
	}
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid player listing fields", verr.Fields)
	case errors.Is(err, ErrSelfHire):
		response.Error(c, http.StatusForbidden, "SELF_HIRE_FORBIDDEN", "You cannot hire your own player listing")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to change this player listing")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Player listing not found")
	case errors.Is(err, ErrAlreadyListed):
		response.Error(c, http.StatusConflict, "ALREADY_LISTED", "User already has a player listing")
	case errors.Is(err, ErrNotAvailable):
		response.Error(c, http.StatusConflict, "NOT_AVAILABLE", "Player is not available for hire")
	case errors.Is(err, ErrNotHired):
		response.Error(c, http.StatusConflict, "NOT_HIRED", "Player is not currently hired")
	case errors.Is(err, ErrConcurrentUpdate):
		response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", "Player listing was modified concurrently, retry the request")
	case errors.Is(err, ErrInvalidHours):
		response.Error(c, http.StatusBadRequest, "INVALID_HOURS", "Hours must be at least 1")
	case errors.Is(err, ErrInvalidRating):
		response.Error(c, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 0 and 5")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process player listing request")
	}
}
