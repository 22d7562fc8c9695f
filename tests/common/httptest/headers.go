//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}

// AssertUUIDHeader checks that header k carries a UUID and returns it.
func AssertUUIDHeader(t *testing.T, w *httptest.ResponseRecorder, k string) string {
	t.Helper()
	v := w.Header().Get(k)
	_, err := uuid.Parse(v)
	assert.NoError(t, err, "header %s is not a UUID: %q", k, v)
	return v
}
