// Package exports provides spreadsheet exports of an organization's leads.
package exports

import (
	apphttp "bighome_hub/internal/http"
	"bighome_hub/internal/leads/aging"
	"bighome_hub/platform/clock"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(pool *pgxpool.Pool, clk clock.Clock) *Module {
	return &Module{
		handler: NewHandler(NewRepository(pool), aging.NewEngine(clk)),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/exports/leads.csv", m.handler.ExportLeadsCSV)
}

var _ apphttp.Module = (*Module)(nil)
