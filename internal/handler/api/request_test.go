//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	domreq "request-desk/internal/domain/request"
	"request-desk/internal/handler/api"
	resdto "request-desk/internal/handler/dto/response"
	"request-desk/internal/usecase/commands"
	"request-desk/internal/usecase/queries"
	"request-desk/internal/usecase/shared"
	"request-desk/tests/common/builder"
	"request-desk/tests/common/httptest"
	"request-desk/tests/common/testutil"
	commandsmock "request-desk/tests/mock/commands"
	queriesmock "request-desk/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RequestHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockRequestCommands
	mockQueries  *queriesmock.MockRequestQueries
	handler      *api.RequestHandler
}

func (s *RequestHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockRequestCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockRequestQueries(s.mockCtrl)
	s.handler = api.NewRequestHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/requests", s.handler.Create)
	s.router.GET("/requests", s.handler.List)
	s.router.GET("/requests/statistics", s.handler.Statistics)
	s.router.GET("/requests/:id", s.handler.Get)
	s.router.PUT("/requests/:id", s.handler.Update)
	s.router.PATCH("/requests/:id", s.handler.Update)
	s.router.DELETE("/requests/:id", s.handler.Delete)
	s.router.POST("/requests/:id/review", s.handler.Transition(domreq.ActionStartReview))
	s.router.POST("/requests/:id/approve", s.handler.Transition(domreq.ActionApprove))
	s.router.POST("/requests/:id/reject", s.handler.Transition(domreq.ActionReject))
	s.router.POST("/requests/:id/cancel", s.handler.Transition(domreq.ActionCancel))
}

func (s *RequestHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRequestHandlerSuite(t *testing.T) {
	suite.Run(t, new(RequestHandlerTestSuite))
}

type testCaseRequest struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
	field      string
	rule       string
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *RequestHandlerTestSuite) TestCreate() {
	url := "/requests"
	reqBody := builder.NewRequestBuilder().AsTraining().BuildCreateRequestDTO()

	s.Run("success: returns 201 Created with Location", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, draft domreq.Draft) (*domreq.Request, error) {
				s.Equal(domreq.KindTraining, draft.Kind)
				s.True(decimal.RequireFromString("1200").Equal(*draft.Amount))
				s.Equal("2025-05-12", draft.StartDate.Format("2006-01-02"))
				return builder.NewRequestBuilder().WithID(7).AsTraining().BuildStored(), nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.RequestResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(int64(7), body.ID)
		s.Equal("pending", body.Status)
		s.Require().NotNil(body.Amount)
		s.Equal("1200.00", *body.Amount)
		s.Require().NotNil(body.DurationDays)
		s.Equal(3, *body.DurationDays)
		s.True(body.CanCancel)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/v1/requests/7"})
	})

	s.Run("error: 400 Bad Request on binding errors", func() {
		cases := []testCaseRequest{
			{name: "missing kind", mutate: testutil.Field("kind", nil), expectCode: http.StatusBadRequest, field: "kind", rule: domreq.RuleRequired},
			{name: "unknown kind", mutate: testutil.Field("kind", "holiday"), expectCode: http.StatusBadRequest, field: "kind", rule: domreq.RuleInvalidChoice},
			{name: "missing description", mutate: testutil.Field("description", nil), expectCode: http.StatusBadRequest, field: "description", rule: domreq.RuleRequired},
			{name: "title too long (201 chars)", mutate: testutil.Field("title", strings.Repeat("t", 201)), expectCode: http.StatusBadRequest, field: "title", rule: domreq.RuleTooLong},
			{name: "notes too long (501 chars)", mutate: testutil.Field("notes", strings.Repeat("n", 501)), expectCode: http.StatusBadRequest, field: "notes", rule: domreq.RuleTooLong},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap)
				body := httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "Validation failed")
				s.True(body.HasField(s.T(), tc.field, tc.rule), rec.Body.String())
			})
		}
	})

	s.Run("error: 400 on malformed bodies", func() {
		bodies := map[string]string{
			"unknown field": `{"kind":"support","description":"long enough text","status":"approved"}`,
			"invalid json":  `{"kind":`,
			"bad date":      `{"kind":"vacation","description":"long enough text","start_date":"01/04/2025"}`,
			"bad amount":    `{"kind":"reimbursement","description":"long enough text","amount":"ten"}`,
		}
		for name, body := range bodies {
			s.Run(name, func() {
				rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, []byte(body), nil)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request body")
			})
		}
	})

	s.Run("error: 400 when the body carries data after the object", func() {
		for _, body := range []string{
			`{"kind":"support","description":"long enough text"} {"kind":"other"}`,
			`{"kind":"support","description":"long enough text"}garbage`,
		} {
			rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, []byte(body), nil)
			res := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request body")
			s.JSONEq(`"request body must hold a single JSON object"`, string(res.Detail))
		}
	})

	s.Run("error: 400 when the body is empty", func() {
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, []byte{}, nil)
		res := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request body")
		s.JSONEq(`"request body is required"`, string(res.Detail))
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name: "domain validation error",
				commandsError: &domreq.ValidationError{Fields: []domreq.FieldError{
					{Field: "amount", Rule: domreq.RuleRequired, Message: "amount is required"},
				}},
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Validation failed",
			},
			{
				name:           "store failure",
				commandsError:  commands.ErrStoreOperationFailed,
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal error",
			},
			{
				name:           "unexpected error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *RequestHandlerTestSuite) TestGet() {
	s.Run("success: returns 200 OK with RequestResponse", func() {
		stored := builder.NewRequestBuilder().WithID(3).AsVacation().WithStatus(domreq.StatusApproved).BuildStored()
		s.mockQueries.EXPECT().Get(gomock.Any(), int64(3)).Return(stored, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/3", nil)

		var response resdto.RequestResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(int64(3), response.ID)
		s.Equal("Vacation", response.KindLabel)
		s.Equal("Approved", response.StatusLabel)
		s.Nil(response.Amount)
		s.Require().NotNil(response.StartDate)
		s.Equal("2025-04-01", *response.StartDate)
		s.False(response.CanCancel)
		s.False(response.CanApprove)
	})

	s.Run("error: 400 on invalid id", func() {
		for _, id := range []string{"abc", "0", "-4"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+id, nil)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
		}
	})

	s.Run("error: 404 when missing", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), int64(99)).Return(nil, queries.ErrRequestNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/99", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Request not found")
	})
}

// ================================================================================
// TestList
// ================================================================================

func (s *RequestHandlerTestSuite) TestList() {
	items := []*domreq.Request{
		builder.NewRequestBuilder().WithID(2).BuildStored(),
		builder.NewRequestBuilder().WithID(1).BuildStored(),
	}

	s.Run("success: parses filters, ordering and paging", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, opts shared.ListOptions) (*queries.RequestList, error) {
				s.Equal([]domreq.Kind{domreq.KindSupport, domreq.KindVacation, domreq.KindOther}, opts.Filter.Kinds)
				s.Equal([]domreq.Status{domreq.StatusPending}, opts.Filter.Statuses)
				s.Require().NotNil(opts.Filter.CreatedFrom)
				s.Equal("2025-03-01", opts.Filter.CreatedFrom.Format("2006-01-02"))
				s.True(decimal.RequireFromString("10.5").Equal(*opts.Filter.AmountMin))
				s.Equal("ana", opts.Filter.Requester)
				s.Equal(shared.Ordering{Field: shared.OrderByAmount, Desc: true}, opts.Ordering)
				s.Equal(shared.Page{Limit: 10, Offset: 20}, opts.Page)
				return &queries.RequestList{Items: items, Total: 42}, nil
			})

		path := "/requests?kind=support,vacation&kind=other&status=pending&created_from=2025-03-01" +
			"&amount_min=10.5&requester=%20ana%20&ordering=-amount&limit=10&offset=20"
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, path, nil)

		var body resdto.RequestListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(42, body.Count)
		s.Len(body.Requests, 2)
	})

	s.Run("success: empty list renders an empty array", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any()).Return(&queries.RequestList{}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"requests":[],"count":0}`, rec.Body.String())
	})

	s.Run("error: 400 reports every malformed parameter", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/requests?kind=holiday&created_to=yesterday&ordering=title&limit=-1", nil)

		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Validation failed")
		s.True(body.HasField(s.T(), "kind", domreq.RuleInvalidChoice))
		s.True(body.HasField(s.T(), "ordering", domreq.RuleInvalidChoice))
		s.Len(body.FieldErrors(s.T()), 4)
	})
}

// ================================================================================
// TestStatistics
// ================================================================================

func (s *RequestHandlerTestSuite) TestStatistics() {
	stats := shared.NewRequestStatistics()
	stats.Add(builder.NewRequestBuilder().AsReimbursement().WithStatus(domreq.StatusApproved).BuildStored())

	s.mockQueries.EXPECT().Statistics(gomock.Any(), shared.RequestFilter{Kinds: []domreq.Kind{domreq.KindReimbursement}}).
		Return(stats, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/statistics?kind=reimbursement", nil)

	var body resdto.StatisticsResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal(1, body.Total)
	s.Equal("150.25", body.TotalApprovedAmount)
	s.Equal(map[string]int{"approved": 1}, body.ByStatus)
	s.Equal(map[string]int{"reimbursement": 1}, body.ByKind)
}

// ================================================================================
// TestUpdate
// ================================================================================

func (s *RequestHandlerTestSuite) TestUpdate() {
	s.Run("success: PATCH forwards only the present fields", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), int64(5), gomock.Any()).
			DoAndReturn(func(_ any, _ int64, p domreq.Patch) (*domreq.Request, error) {
				s.Require().NotNil(p.Title)
				s.Equal("New title", *p.Title)
				s.Nil(p.Description)
				s.Nil(p.Kind)
				s.Nil(p.Amount)
				s.False(p.ClearAmount)
				return builder.NewRequestBuilder().WithID(5).BuildStored(), nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/requests/5", map[string]any{"title": "New title"})
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: explicit null clears amount and dates", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), int64(5), gomock.Any()).
			DoAndReturn(func(_ any, _ int64, p domreq.Patch) (*domreq.Request, error) {
				s.Require().NotNil(p.Kind)
				s.Equal(domreq.KindSupport, *p.Kind)
				s.Nil(p.Amount)
				s.True(p.ClearAmount)
				s.True(p.ClearStartDate)
				s.False(p.ClearEndDate)
				s.Require().NotNil(p.EndDate)
				s.Equal("2025-05-02", p.EndDate.Format(time.DateOnly))
				return builder.NewRequestBuilder().WithID(5).BuildStored(), nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/requests/5", map[string]any{
			"kind":       "support",
			"amount":     nil,
			"start_date": nil,
			"end_date":   "2025-05-02",
		})
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: status cannot be set through update", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/requests/5", map[string]any{"status": "approved"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request body")
	})

	s.Run("error: maps usecase errors", func() {
		testCases := []struct {
			name           string
			err            error
			expectedStatus int
			expectedMsg    string
		}{
			{name: "empty patch", err: commands.ErrEmptyPatch, expectedStatus: http.StatusBadRequest, expectedMsg: commands.ErrEmptyPatch.Error()},
			{name: "not found", err: commands.ErrRequestNotFound, expectedStatus: http.StatusNotFound, expectedMsg: "Request not found"},
			{
				name: "terminal request",
				err: &domreq.ValidationError{Fields: []domreq.FieldError{
					{Field: "status", Rule: domreq.RuleTerminal, Message: "request can no longer be edited"},
				}},
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Validation failed",
			},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Update(gomock.Any(), int64(5), gomock.Any()).Return(nil, tc.err)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/requests/5", map[string]any{})
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestDelete
// ================================================================================

func (s *RequestHandlerTestSuite) TestDelete() {
	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), int64(6)).Return(nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/requests/6", nil)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Body.String())
	})

	s.Run("error: approved request conflicts", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), int64(6)).
			Return(&domreq.ConflictError{ID: 6, Status: domreq.StatusApproved, Reason: "approved requests cannot be deleted"})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/requests/6", nil)
		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "approved requests cannot be deleted")
		s.JSONEq(`{"status":"approved"}`, string(body.Detail))
	})
}

// ================================================================================
// TestTransition
// ================================================================================

func (s *RequestHandlerTestSuite) TestTransition() {
	routes := []struct {
		path    string
		action  domreq.Action
		message string
		status  domreq.Status
	}{
		{path: "review", action: domreq.ActionStartReview, message: "Request moved to review", status: domreq.StatusUnderReview},
		{path: "approve", action: domreq.ActionApprove, message: "Request approved", status: domreq.StatusApproved},
		{path: "reject", action: domreq.ActionReject, message: "Request rejected", status: domreq.StatusRejected},
		{path: "cancel", action: domreq.ActionCancel, message: "Request cancelled", status: domreq.StatusCancelled},
	}

	for _, rt := range routes {
		s.Run("success: "+rt.path, func() {
			s.mockCommands.EXPECT().Transition(gomock.Any(), int64(8), rt.action, "checked").
				Return(builder.NewRequestBuilder().WithID(8).WithStatus(rt.status).BuildStored(), nil)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/8/"+rt.path, map[string]any{"notes": "checked"})

			var body resdto.ActionResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Equal(rt.message, body.Message)
			s.Equal(string(rt.status), body.Request.Status)
		})
	}

	s.Run("success: body is optional", func() {
		s.mockCommands.EXPECT().Transition(gomock.Any(), int64(8), domreq.ActionApprove, "").
			Return(builder.NewRequestBuilder().WithID(8).WithStatus(domreq.StatusApproved).BuildStored(), nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/8/approve", nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: illegal transition reports status and action", func() {
		s.mockCommands.EXPECT().Transition(gomock.Any(), int64(8), domreq.ActionApprove, "").
			Return(nil, &domreq.TransitionError{From: domreq.StatusCancelled, Action: domreq.ActionApprove})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/8/approve", nil)
		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "cannot approve")
		s.JSONEq(`{"status":"cancelled","action":"approve"}`, string(body.Detail))
	})

	s.Run("error: notes too long", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/8/reject",
			map[string]any{"notes": strings.Repeat("n", 501)})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Validation failed")
	})

	s.Run("error: not found", func() {
		s.mockCommands.EXPECT().Transition(gomock.Any(), int64(9), domreq.ActionCancel, "").
			Return(nil, commands.ErrRequestNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/requests/9/cancel", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Request not found")
	})
}
