package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// JobHandler handles HTTP requests for job operations.
type JobHandler struct {
	jobs       ports.JobService
	transition ports.TransitionService
}

func NewJobHandler(jobs ports.JobService, transition ports.TransitionService) *JobHandler {
	return &JobHandler{jobs: jobs, transition: transition}
}

// Create handles POST /v1/jobs.
//
// @Summary      Create a new registration job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobRequest  true  "Client details"
// @Success      201   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.jobs.Create(c.Request().Context(), ports.CreateJobInput{
		Name:       req.Name,
		Surname:    req.Surname,
		Phone:      req.Phone,
		PersonType: req.PersonType,
		BrandName:  req.BrandName,
		Classes:    req.Classes,
		OperatorID: actor.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toJobResponse(job))
}

// Get handles GET /v1/jobs/:id.
//
// @Summary      Get a job by id
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// List handles GET /v1/jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        assignee  query     string  false  "Filter by assigned user id"
// @Param        mine      query     bool    false  "Only jobs assigned to the caller"
// @Param        search    query     string  false  "Search by name, phone, brand, or sequence"
// @Param        archived  query     bool    false  "Include archived jobs"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  jobListResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	in := ports.ListJobsInput{
		Status:   c.QueryParam("status"),
		Assignee: c.QueryParam("assignee"),
		Search:   c.QueryParam("search"),
	}
	if mine, _ := strconv.ParseBool(c.QueryParam("mine")); mine {
		in.Assignee = actor.ID
	}
	if raw := c.QueryParam("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "archived must be a boolean")
		}
		in.Archived = &archived
	}
	in.Page, _ = strconv.Atoi(c.QueryParam("page"))
	in.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.jobs.List(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jobListResponse{
		Items:      toJobListResponse(result.Items),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Update handles PATCH /v1/jobs/:id.
//
// @Summary      Update job client fields
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Job id"
// @Param        body  body      updateJobRequest  true  "Fields to update"
// @Success      200   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id} [patch]
func (h *JobHandler) Update(c echo.Context) error {
	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.jobs.Update(c.Request().Context(), c.Param("id"), ports.UpdateJobInput{
		Name:      req.Name,
		Surname:   req.Surname,
		Phone:     req.Phone,
		BrandName: req.BrandName,
		Classes:   req.Classes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// Delete handles DELETE /v1/jobs/:id. Admin only (enforced by RBAC middleware
// and re-checked in the service).
//
// @Summary      Delete a job
// @Tags         jobs
// @Security     BearerAuth
// @Param        id  path  string  true  "Job id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.jobs.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Transition handles POST /v1/jobs/:id/transition.
//
// @Summary      Apply a status transition
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Job id"
// @Param        body  body      transitionRequest  true  "Target status and edge payload"
// @Success      200   {object}  transitionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/jobs/{id}/transition [post]
func (h *JobHandler) Transition(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.transition.Apply(c.Request().Context(), ports.ApplyTransitionInput{
		JobID:  c.Param("id"),
		Actor:  actor,
		Target: domain.JobStatus(req.Status),
		Payload: ports.TransitionPayload{
			BrandName:      req.BrandName,
			Reason:         req.Reason,
			ReviewerID:     req.ReviewerID,
			CertificateRef: req.CertificateRef,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transitionResponse{
		Job:  toJobResponse(result.Job),
		NoOp: result.NoOp,
	})
}

// AddInvoice handles POST /v1/jobs/:id/invoices. Admin only.
//
// @Summary      Add an invoice to a job
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Job id"
// @Param        body  body      addInvoiceRequest  true  "Invoice amount"
// @Success      201   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id}/invoices [post]
func (h *JobHandler) AddInvoice(c echo.Context) error {
	var req addInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := h.jobs.AddInvoice(c.Request().Context(), c.Param("id"), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toJobResponse(job))
}

// AttachReceipt handles POST /v1/jobs/:id/invoices/:index/receipt. Expects a
// multipart form with a single "receipt" file.
//
// @Summary      Attach a payment receipt to an invoice
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Job id"
// @Param        index    path      int     true  "Invoice index"
// @Param        receipt  formData  file    true  "Receipt file"
// @Success      200      {object}  jobResponse
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /v1/jobs/{id}/invoices/{index}/receipt [post]
func (h *JobHandler) AttachReceipt(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invoice index must be an integer")
	}

	fh, err := c.FormFile("receipt")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "receipt file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	job, err := h.jobs.AttachReceipt(c.Request().Context(), c.Param("id"), index, ports.FileUpload{
		Name:   fh.Filename,
		Reader: src,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// MarkInvoicePaid handles POST /v1/jobs/:id/invoices/:index/paid. Admin only.
//
// @Summary      Confirm an invoice as paid
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Job id"
// @Param        index  path      int     true  "Invoice index"
// @Success      200    {object}  jobResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/jobs/{id}/invoices/{index}/paid [post]
func (h *JobHandler) MarkInvoicePaid(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invoice index must be an integer")
	}

	job, err := h.jobs.MarkInvoicePaid(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// UploadDocuments handles POST /v1/jobs/:id/documents. Every file in the
// multipart form is stored; form field names select the document slot
// (charter, passport, logo, ...).
//
// @Summary      Upload client documents
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id}/documents [post]
func (h *JobHandler) UploadDocuments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form is required")
	}

	files := make(map[string]ports.FileUpload, len(form.File))
	closers := make([]func() error, 0, len(form.File))
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()

	for field, fhs := range form.File {
		if len(fhs) == 0 {
			continue
		}
		src, err := fhs[0].Open()
		if err != nil {
			return err
		}
		closers = append(closers, src.Close)
		files[field] = ports.FileUpload{Name: fhs[0].Filename, Reader: src}
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one file is required")
	}

	job, err := h.jobs.UploadDocuments(c.Request().Context(), c.Param("id"), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// GeneratePowerOfAttorney handles POST /v1/jobs/:id/power-of-attorney.
//
// @Summary      Generate the power-of-attorney document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Job id"
// @Success      201  {object}  fileRefResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id}/power-of-attorney [post]
func (h *JobHandler) GeneratePowerOfAttorney(c echo.Context) error {
	ref, err := h.jobs.GeneratePowerOfAttorney(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fileRefResponse{FileRef: ref})
}
