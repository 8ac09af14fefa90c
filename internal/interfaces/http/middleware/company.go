package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
)

// CompanyIDHeader scopes every request to one company
const CompanyIDHeader = "X-Company-ID"

// UserIDHeader identifies the acting user, set by the auth gateway
const UserIDHeader = "X-User-ID"

// CompanyContext requires a valid company ID header and stores the parsed
// IDs in both the gin context and the request context for downstream logs.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(CompanyIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeMissingCompany, "Missing "+CompanyIDHeader+" header"))
			return
		}
		companyID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeMissingCompany, "Invalid "+CompanyIDHeader+" header"))
			return
		}

		c.Set("company_id", companyID)
		log := logger.FromContext(c.Request.Context())
		ctx, log := logger.WithCompanyID(c.Request.Context(), log, companyID.String())

		if rawUser := c.GetHeader(UserIDHeader); rawUser != "" {
			if userID, err := uuid.Parse(rawUser); err == nil {
				c.Set("user_id", userID)
				ctx, _ = logger.WithUserID(ctx, log, userID.String())
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCompanyID returns the company ID set by CompanyContext
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("company_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserID returns the acting user ID when the header was present
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
