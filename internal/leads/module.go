// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"fmt"

	"bighome_hub/internal/events"
	apphttp "bighome_hub/internal/http"
	"bighome_hub/internal/leads/handler"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/internal/leads/service"
	"bighome_hub/internal/leads/transport"
	"bighome_hub/platform/clock"
	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"
	"bighome_hub/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, directory service.AgentDirectory, cfg config.LeadsConfig, log *logger.Logger) (*Module, error) {
	loc, err := clock.LoadZone(cfg.GetAgingTimezone())
	if err != nil {
		return nil, fmt.Errorf("aging timezone: %w", err)
	}

	if err := transport.RegisterValidations(val); err != nil {
		return nil, fmt.Errorf("register lead validations: %w", err)
	}

	repo := repository.New(pool)
	svc := service.New(repo, clock.NewZoned(loc), directory, eventBus, cfg.GetPhoneDefaultRegion())

	log.Info("leads module ready", "timezone", loc.String())

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetSweepTrigger lets admins queue an overdue sweep from the API.
func (m *Module) SetSweepTrigger(t handler.SweepTrigger) {
	m.handler.SetSweepTrigger(t)
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterAgingRoutes(ctx.Protected.Group("/aging"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
