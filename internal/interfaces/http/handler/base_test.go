package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	base := &BaseHandler{}
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		c.Set("request_id", "req-1")
		base.Error(c, err)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestBaseHandler_Error_DomainError(t *testing.T) {
	rec, resp := serveWithError(t, shared.NewDomainError("ALREADY_RECONCILED", "Transaction is already reconciled"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.Equal(t, "ALREADY_RECONCILED", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestBaseHandler_Error_NotFoundSentinel(t *testing.T) {
	rec, resp := serveWithError(t, shared.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestBaseHandler_Error_UnknownErrorHidesMessage(t *testing.T) {
	rec, resp := serveWithError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "pq:")
}
