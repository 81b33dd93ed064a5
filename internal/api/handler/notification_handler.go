package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brandreg/crm-api/internal/core/ports"
)

// NotificationHandler serves a user's notification feed.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// List handles GET /v1/notifications. The feed is always scoped to the
// caller: notifications addressed to them or to their role.
//
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query  bool  false  "Only unread notifications"
// @Param        limit   query  int   false  "Maximum items (default 50)"
// @Success      200  {array}   domain.Notification
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, err := h.service.List(c.Request().Context(), ports.ListNotificationsFilter{
		UserID:     actor.ID,
		Role:       actor.Role,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// UnreadCount handles GET /v1/notifications/unread-count.
//
// @Summary      Count the caller's unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	n, err := h.service.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Unread: n})
}

// MarkRead handles POST /v1/notifications/:id/read.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
