// Package directory provides the team member lookup bounded context module.
package directory

import (
	"bighome_hub/internal/directory/handler"
	"bighome_hub/internal/directory/repository"
	"bighome_hub/internal/directory/service"
	apphttp "bighome_hub/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "directory"
}

// Service is shared with the leads and notification modules.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/team"))
}

var _ apphttp.Module = (*Module)(nil)
