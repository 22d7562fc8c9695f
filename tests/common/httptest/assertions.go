//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	domreq "request-desk/internal/domain/request"

	"github.com/stretchr/testify/assert"
)

// ErrorBody is the decoded httperr.Response envelope with the detail left raw.
type ErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail    json.RawMessage `json:"detail"`
	RequestID string          `json:"request_id"`
}

// FieldErrors decodes a validation detail list.
func (b ErrorBody) FieldErrors(t *testing.T) []domreq.FieldError {
	t.Helper()
	var fields []domreq.FieldError
	assert.NoError(t, json.Unmarshal(b.Detail, &fields), "detail is not a field error list: %s", string(b.Detail))
	return fields
}

// HasField reports whether the detail names field with the given rule.
func (b ErrorBody) HasField(t *testing.T, field, rule string) bool {
	t.Helper()
	for _, f := range b.FieldErrors(t) {
		if f.Field == field && f.Rule == rule {
			return true
		}
	}
	return false
}

func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, targetStruct any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String())) {
		return
	}

	if expectedStatus >= 200 && expectedStatus < 300 && targetStruct != nil {
		err := json.Unmarshal(w.Body.Bytes(), targetStruct)
		assert.NoError(t, err, fmt.Sprintf("Failed to decode response JSON: %s", w.Body.String()))
	}
}

// AssertErrorResponse checks the status and message and returns the decoded envelope.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedErrorMsg string) ErrorBody {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String()))

	var body ErrorBody
	err := json.Unmarshal(w.Body.Bytes(), &body)
	assert.NoError(t, err, fmt.Sprintf("Failed to decode error response JSON: %s", w.Body.String()))

	if expectedErrorMsg != "" {
		assert.Contains(t, body.Error.Message, expectedErrorMsg,
			"Response error message doesn't contain expected text")
	}
	return body
}
