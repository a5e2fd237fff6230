package handler

import (
	"context"
	"net/http"

	"bighome_hub/internal/leads/service"
	"bighome_hub/internal/leads/transport"
	"bighome_hub/platform/apperr"
	"bighome_hub/platform/httpkit"
	"bighome_hub/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc    *service.Service
	val    *validator.Validator
	sweeps SweepTrigger
}

// SweepTrigger queues an out-of-schedule overdue sweep.
type SweepTrigger interface {
	EnqueueAgingSweep(ctx context.Context, trigger string) error
}

const (
	roleAdmin          = "admin"
	manualSweepTrigger = "manual"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the lead routes on rg, which must already require
// authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/summary", h.Summary)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/stage", h.ChangeStage)
	rg.GET("/:id/interactions", h.ListInteractions)
	rg.POST("/:id/interactions", h.RecordInteraction)
	rg.PUT("/:id/followup", h.ScheduleFollowup)
	rg.DELETE("/:id/followup", h.ClearFollowup)
	rg.GET("/:id/aging", h.Aging)
	rg.GET("/:id/countdown", h.Countdown)
}

// RegisterAgingRoutes mounts the stateless aging endpoints.
func (h *Handler) RegisterAgingRoutes(rg *gin.RouterGroup) {
	rg.POST("/preview", h.Preview)
	rg.POST("/sweep", h.TriggerSweep)
}

// SetSweepTrigger enables POST /aging/sweep.
func (h *Handler) SetSweepTrigger(t SweepTrigger) {
	h.sweeps = t
}

func (h *Handler) Create(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) Get(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) List(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Update(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), tenantID, id)) {
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) ChangeStage(c *gin.Context) {
	identity, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	var req transport.ChangeStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.ChangeStage(c.Request.Context(), tenantID, identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) RecordInteraction(c *gin.Context) {
	identity, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	var req transport.RecordInteractionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RecordInteraction(c.Request.Context(), tenantID, identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListInteractions(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	result, err := h.svc.ListActivities(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ScheduleFollowup(c *gin.Context) {
	identity, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	var req transport.ScheduleFollowupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.ScheduleFollowup(c.Request.Context(), tenantID, identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) ClearFollowup(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	lead, err := h.svc.ClearFollowup(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Aging(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	result, err := h.svc.Aging(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Countdown(c *gin.Context) {
	_, tenantID, id, ok := h.leadTarget(c)
	if !ok {
		return
	}

	result, err := h.svc.Countdown(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Summary(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Summary(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Preview(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	var req transport.AgingPreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	httpkit.OK(c, h.svc.Preview(req))
}

func (h *Handler) TriggerSweep(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if !identity.HasRole(roleAdmin) {
		httpkit.HandleError(c, apperr.Forbidden("admin role required"))
		return
	}
	if h.sweeps == nil {
		httpkit.HandleError(c, apperr.Unavailable("background jobs not configured", nil))
		return
	}

	if err := h.sweeps.EnqueueAgingSweep(c.Request.Context(), manualSweepTrigger); err != nil {
		httpkit.HandleError(c, apperr.Unavailable("could not queue sweep", err))
		return
	}

	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// leadTarget resolves the caller's organization and the :id path parameter.
func (h *Handler) leadTarget(c *gin.Context) (httpkit.Identity, uuid.UUID, uuid.UUID, bool) {
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return nil, uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, uuid.Nil, uuid.Nil, false
	}

	return identity, tenantID, id, true
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}
