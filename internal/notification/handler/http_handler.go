package handler

import (
	"net/http"
	"strconv"

	"bighome_hub/internal/notification/inapp"
	"bighome_hub/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPageLimit = 50

type HTTPHandler struct {
	svc *inapp.Service
}

func NewHTTPHandler(svc *inapp.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread", h.CountUnread)
	rg.PATCH("/read-all", h.MarkAllRead)
	rg.PATCH("/:id/read", h.MarkRead)
	rg.DELETE("/:id", h.Delete)
}

func recipient(c *gin.Context) (inapp.Recipient, bool) {
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return inapp.Recipient{}, false
	}
	return inapp.Recipient{OrganizationID: tenantID, UserID: identity.UserID()}, true
}

func notificationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandler) List(c *gin.Context) {
	to, ok := recipient(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	result, err := h.svc.List(c.Request.Context(), to, page, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *HTTPHandler) CountUnread(c *gin.Context) {
	to, ok := recipient(c)
	if !ok {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), to)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	to, ok := recipient(c)
	if !ok {
		return
	}
	id, ok := notificationID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), to, id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	to, ok := recipient(c)
	if !ok {
		return
	}

	updated, err := h.svc.MarkAllRead(c.Request.Context(), to)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"updated": updated})
}

func (h *HTTPHandler) Delete(c *gin.Context) {
	to, ok := recipient(c)
	if !ok {
		return
	}
	id, ok := notificationID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), to, id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}
