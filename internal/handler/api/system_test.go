//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"request-desk/internal/handler/api"
	resdto "request-desk/internal/handler/dto/response"
	"request-desk/internal/usecase/shared"
	"request-desk/tests/common/httptest"
	queriesmock "request-desk/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestSystemHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	q := queriesmock.NewMockRequestQueries(ctrl)
	h := api.NewSystemHandler(q)

	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	t.Run("health ok", func(t *testing.T) {
		q.EXPECT().Count(gomock.Any(), shared.RequestFilter{}).Return(12, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/health", nil)
		var body resdto.HealthResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, 12, body.TotalRequests)
	})

	t.Run("health reports an unavailable store", func(t *testing.T) {
		q.EXPECT().Count(gomock.Any(), shared.RequestFilter{}).Return(0, errors.New("connection refused"))

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("root lists the endpoints", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"service":"request-desk"`)
	})
}
