package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus("BANK_ACCOUNT_NOT_FOUND"))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus("ALREADY_PAIRED"))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("EXCEEDS_UNALLOCATED"))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("EMPTY_BATCH"))
}

func TestGetHTTPStatus_UnknownCodeIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_NEW"))
}
