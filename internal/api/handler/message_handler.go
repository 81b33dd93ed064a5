package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// MessageHandler serves the per-job comment thread.
type MessageHandler struct {
	jobs     ports.JobService
	messages ports.MessageRepository
}

func NewMessageHandler(jobs ports.JobService, messages ports.MessageRepository) *MessageHandler {
	return &MessageHandler{jobs: jobs, messages: messages}
}

// List handles GET /v1/jobs/:id/messages.
//
// @Summary      List a job's messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Job id"
// @Success      200  {array}   domain.Message
// @Failure      404  {object}  map[string]string
// @Router       /v1/jobs/{id}/messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	jobID := c.Param("id")
	if _, err := h.jobs.Get(c.Request().Context(), jobID); err != nil {
		return err
	}

	items, err := h.messages.ListByJob(c.Request().Context(), jobID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Post handles POST /v1/jobs/:id/messages.
//
// @Summary      Append a message to a job's thread
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Job id"
// @Param        body  body      postMessageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/jobs/{id}/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	jobID := c.Param("id")
	if _, err := h.jobs.Get(c.Request().Context(), jobID); err != nil {
		return err
	}

	msg := &domain.Message{
		JobID:      jobID,
		Sender:     actor.ID,
		TargetRole: req.TargetRole,
		Text:       req.Text,
		FileRef:    req.FileRef,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.messages.Insert(c.Request().Context(), msg); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}
