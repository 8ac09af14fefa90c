package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers for all handlers
type BaseHandler struct{}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.respondError(c, dto.ErrCodeBadRequest, message)
}

// Error maps an error to an HTTP response. Domain errors carry their own
// code; everything else is a 500 with the message withheld.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.respondError(c, domainErr.Code, domainErr.Message)
		return
	}
	h.respondError(c, dto.ErrCodeInternal, "Internal server error")
}

func (h *BaseHandler) respondError(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// companyID returns the request's company scope, aborting with 400 when
// the middleware did not set one.
func (h *BaseHandler) companyID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetCompanyID(c)
	if !ok {
		h.respondError(c, dto.ErrCodeMissingCompany, "Missing company scope")
		return uuid.Nil, false
	}
	return id, true
}

// userID returns the acting user, falling back to the nil UUID
func (h *BaseHandler) userID(c *gin.Context) uuid.UUID {
	id, _ := middleware.GetUserID(c)
	return id
}

// pathUUID parses a UUID path parameter
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.respondError(c, dto.ErrCodeBadRequest, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
