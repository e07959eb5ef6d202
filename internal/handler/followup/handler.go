package followup

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/followups/internal/middleware"
	"github.com/jwalitptl/followups/internal/model"
	"github.com/jwalitptl/followups/internal/service/followup"
	"github.com/jwalitptl/followups/pkg/errors"
	"github.com/jwalitptl/followups/pkg/httputil"
)

const msgInvalidDate = "Enter a valid date."

type Handler struct {
	service followup.FollowUpServicer
}

func NewHandler(service followup.FollowUpServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the staff routes. The group must already require
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	followUps := r.Group("/followups")
	{
		followUps.GET("", h.Dashboard)
		followUps.GET("/new", h.NewForm)
		followUps.POST("", h.Create)
		followUps.POST("/import", h.Import)
		followUps.GET("/:id", h.Get)
		followUps.POST("/:id", h.Update)
		followUps.PUT("/:id", h.Update)
		followUps.POST("/:id/done", h.MarkDone)
	}
}

type createRequest struct {
	PatientName string `json:"patient_name" form:"patient_name"`
	Phone       string `json:"phone" form:"phone"`
	Language    string `json:"language" form:"language"`
	Notes       string `json:"notes" form:"notes"`
	DueDate     string `json:"due_date" form:"due_date"`
}

type updateRequest struct {
	PatientName *string `json:"patient_name" form:"patient_name"`
	Phone       *string `json:"phone" form:"phone"`
	Language    *string `json:"language" form:"language"`
	Notes       *string `json:"notes" form:"notes"`
	DueDate     *string `json:"due_date" form:"due_date"`
	Status      *string `json:"status" form:"status"`
}

type importRequest struct {
	Rows []model.ImportRow `json:"rows"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	fields := map[string]string{}
	filters := model.ListFilters{
		Status:    model.Status(strings.TrimSpace(c.Query("status"))),
		StartDate: parseDate(fields, "start_date", c.Query("start_date")),
		EndDate:   parseDate(fields, "end_date", c.Query("end_date")),
	}
	if len(fields) > 0 {
		httputil.RespondWithError(c, errors.Validation(fields))
		return
	}

	dashboard, err := h.service.List(c.Request.Context(), middleware.IdentityFrom(c), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", dashboard)
}

func (h *Handler) NewForm(c *gin.Context) {
	choices, err := h.service.Choices(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", choices)
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	fields := map[string]string{}
	in := model.CreateFollowUpInput{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Language:    model.Language(strings.TrimSpace(req.Language)),
		Notes:       req.Notes,
		DueDate:     parseDate(fields, "due_date", req.DueDate),
	}
	if len(fields) > 0 {
		httputil.RespondWithError(c, errors.Validation(fields))
		return
	}

	f, err := h.service.Create(c.Request.Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Follow-up created successfully.", f)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := followUpID(c)
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "", f)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := followUpID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	fields := map[string]string{}
	in := model.UpdateFollowUpInput{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Notes:       req.Notes,
	}
	if req.Language != nil {
		lang := model.Language(strings.TrimSpace(*req.Language))
		in.Language = &lang
	}
	if req.Status != nil {
		status := model.Status(strings.TrimSpace(*req.Status))
		in.Status = &status
	}
	if req.DueDate != nil {
		due := parseDate(fields, "due_date", *req.DueDate)
		in.DueDate = &due
	}
	if len(fields) > 0 {
		httputil.RespondWithError(c, errors.Validation(fields))
		return
	}

	f, err := h.service.Update(c.Request.Context(), middleware.IdentityFrom(c), id, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Follow-up updated successfully.", f)
}

func (h *Handler) MarkDone(c *gin.Context) {
	id, ok := followUpID(c)
	if !ok {
		return
	}

	f, err := h.service.MarkDone(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Follow-up marked as done.", f)
}

func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	res, err := h.service.Import(c.Request.Context(), middleware.IdentityFrom(c), req.Rows)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	msg := fmt.Sprintf("Import completed: %d created, %d skipped", res.Created, res.Skipped)
	httputil.RespondWithSuccess(c, http.StatusOK, msg, res)
}

// followUpID parses the :id parameter. A malformed id is reported exactly
// like a record that does not exist.
func followUpID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("follow-up", err))
		return uuid.Nil, false
	}
	return id, true
}

// parseDate reads an optional YYYY-MM-DD value, recording a field error when
// it is present but malformed.
func parseDate(fields map[string]string, name, raw string) model.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Date{}
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		fields[name] = msgInvalidDate
		return model.Date{}
	}
	return d
}
