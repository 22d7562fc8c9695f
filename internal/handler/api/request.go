package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	domreq "request-desk/internal/domain/request"
	reqdto "request-desk/internal/handler/dto/request"
	resdto "request-desk/internal/handler/dto/response"
	"request-desk/internal/handler/httperr"
	"request-desk/internal/pkg/errs"
	"request-desk/internal/usecase/commands"
	"request-desk/internal/usecase/queries"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var actionMessages = map[domreq.Action]string{
	domreq.ActionStartReview: "Request moved to review",
	domreq.ActionApprove:     "Request approved",
	domreq.ActionReject:      "Request rejected",
	domreq.ActionCancel:      "Request cancelled",
}

type RequestHandler struct {
	cmds commands.RequestCommands
	q    queries.RequestQueries
}

func NewRequestHandler(cmds commands.RequestCommands, q queries.RequestQueries) *RequestHandler {
	reqdto.RegisterValidators()
	return &RequestHandler{cmds: cmds, q: q}
}

// @Summary Create request
// @Description Submit a new request. It starts in the pending status.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body reqdto.CreateRequestRequest true "Create request"
// @Success 201 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Router /api/v1/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req reqdto.CreateRequestRequest
	if err := bindStrictJSON(c, &req, false); err != nil {
		abortBindError(c, err)
		return
	}
	created, err := h.cmds.Create(c.Request.Context(), req.ToDraft())
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.Header("Location", "/api/v1/requests/"+strconv.FormatInt(created.ID(), 10))
	c.JSON(http.StatusCreated, resdto.FromRequest(created))
}

// @Summary List requests
// @Description List requests with optional filters, ordering and paging
// @Tags requests
// @Produce json
// @Param kind query []string false "Kind filter (repeatable or comma separated)"
// @Param status query []string false "Status filter (repeatable or comma separated)"
// @Param created_from query string false "Created on or after (YYYY-MM-DD)"
// @Param created_to query string false "Created on or before (YYYY-MM-DD)"
// @Param start_from query string false "Start date on or after (YYYY-MM-DD)"
// @Param start_to query string false "Start date on or before (YYYY-MM-DD)"
// @Param amount_min query string false "Minimum amount"
// @Param amount_max query string false "Maximum amount"
// @Param requester query string false "Requester contains"
// @Param search query string false "Search title, description and requester"
// @Param ordering query string false "created_at, updated_at, start_date or amount, prefix - for descending"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} resdto.RequestListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/v1/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	opts, err := reqdto.ParseListOptions(c)
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	list, err := h.q.List(c.Request.Context(), opts)
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestList(list))
}

// @Summary Request statistics
// @Description Counts by status and kind plus the approved amount total. Accepts the list filters.
// @Tags requests
// @Produce json
// @Success 200 {object} resdto.StatisticsResponse
// @Failure 400 {object} httperr.Response
// @Router /api/v1/requests/statistics [get]
func (h *RequestHandler) Statistics(c *gin.Context) {
	f, err := reqdto.ParseFilter(c)
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	stats, err := h.q.Statistics(c.Request.Context(), f)
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStatistics(stats))
}

// @Summary Get request
// @Tags requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequest(r))
}

// @Summary Update request
// @Description Merge the provided fields into the request. Send null for amount, start_date or end_date to remove it. The status cannot be changed here.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body reqdto.UpdateRequestRequest true "Fields to change"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/requests/{id} [put]
// @Router /api/v1/requests/{id} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateRequestRequest
	if err := bindStrictJSON(c, &req, false); err != nil {
		abortBindError(c, err)
		return
	}
	updated, err := h.cmds.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequest(updated))
}

// @Summary Delete request
// @Description Approved requests cannot be deleted.
// @Tags requests
// @Param id path int true "Request ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), id); err != nil {
		abortUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Change request status
// @Description review, approve, reject and cancel. Non-empty notes replace the current notes.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body reqdto.TransitionRequest false "Optional notes"
// @Success 200 {object} resdto.ActionResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/requests/{id}/review [post]
// @Router /api/v1/requests/{id}/approve [post]
// @Router /api/v1/requests/{id}/reject [post]
// @Router /api/v1/requests/{id}/cancel [post]
func (h *RequestHandler) Transition(action domreq.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req reqdto.TransitionRequest
		if err := bindStrictJSON(c, &req, true); err != nil {
			abortBindError(c, err)
			return
		}
		updated, err := h.cmds.Transition(c.Request.Context(), id, action, req.Notes)
		if err != nil {
			abortUsecaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, resdto.ActionResponse{
			Message: actionMessages[action],
			Request: resdto.FromRequest(updated),
		})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = errs.Newf("non-positive id %d", id)
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

var (
	errEmptyBody    = errs.New("request body is required")
	errTrailingData = errs.New("request body must hold a single JSON object")
)

// bindStrictJSON decodes exactly one JSON value rejecting unknown fields, then runs the binding tags.
func bindStrictJSON(c *gin.Context, obj any, allowEmpty bool) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if !errors.Is(err, io.EOF) {
			return err
		}
		if !allowEmpty {
			return errEmptyBody
		}
		return binding.Validator.ValidateStruct(obj)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return binding.Validator.ValidateStruct(obj)
}

func abortBindError(c *gin.Context, err error) {
	if fields := reqdto.FieldErrors(err); fields != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", fields)
		return
	}
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", err.Error())
}

func abortUsecaseError(c *gin.Context, err error) {
	var (
		verr *domreq.ValidationError
		terr *domreq.TransitionError
		cerr *domreq.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", verr.Fields)
	case errors.As(err, &terr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, terr.Error(), gin.H{
			"status": terr.From,
			"action": terr.Action,
		})
	case errors.As(err, &cerr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, cerr.Error(), gin.H{"status": cerr.Status})
	case errors.Is(err, commands.ErrEmptyPatch),
		errors.Is(err, commands.ErrUnknownAction),
		errors.Is(err, queries.ErrInvalidOrdering):
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
	case errors.Is(err, commands.ErrRequestNotFound), errors.Is(err, queries.ErrRequestNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
	}
}
