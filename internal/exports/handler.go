package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bighome_hub/internal/leads/aging"
	"bighome_hub/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "02/01/2006 15:04"

	defaultExportLimit = 5000
	maxExportLimit     = 50000
)

// LeadSource lists the rows of one export.
type LeadSource interface {
	ListLeads(ctx context.Context, organizationID uuid.UUID, from, to time.Time, limit int) ([]LeadRow, error)
}

// Handler handles spreadsheet export requests.
type Handler struct {
	repo   LeadSource
	engine *aging.Engine
}

// NewHandler creates a new export handler.
func NewHandler(repo LeadSource, engine *aging.Engine) *Handler {
	return &Handler{repo: repo, engine: engine}
}

// ExportLeadsCSV streams the organization's leads with their aging at the
// moment of the request.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	location, ok := h.parseTimezone(c)
	if !ok {
		return
	}

	fromDate, toDate, err := parseDateRange(c, h.engine.Now(), location)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	limit := parseLimit(c, defaultExportLimit, maxExportLimit)

	leads, err := h.repo.ListLeads(c.Request.Context(), tenantID, fromDate, toDate, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	now := h.engine.Now()
	writer, ok := startCsvResponse(c, now.In(location))
	if !ok {
		return
	}

	for _, lead := range leads {
		if err := writer.Write(h.leadRecord(lead, now, location)); err != nil {
			return
		}
	}

	writer.Flush()
	_ = writer.Error()
}

// ---- Helpers ----

func csvHeaders() []string {
	return []string{
		"ID",
		"Nome",
		"Telefone",
		"Email",
		"Origem",
		"Etapa",
		"Responsável",
		"Criado em",
		"Última interação",
		"Follow-up",
		"Urgência (%)",
		"Situação",
		"Dias sem contato",
		"Vencido",
	}
}

func (h *Handler) leadRecord(lead LeadRow, now time.Time, location *time.Location) []string {
	stage := lead.Stage
	result := h.engine.ComputeAt(aging.Input{
		LastInteractionAt:   lead.LastInteractionAt,
		FollowupScheduledAt: lead.FollowupScheduledAt,
		Stage:               &stage,
	}, now)

	return []string{
		lead.ID.String(),
		lead.Name,
		lead.Phone,
		deref(lead.Email),
		deref(lead.Source),
		lead.Stage,
		deref(lead.AgentName),
		formatTime(&lead.CreatedAt, location),
		formatTime(lead.LastInteractionAt, location),
		formatTime(lead.FollowupScheduledAt, location),
		strconv.Itoa(result.Percentage),
		result.Label,
		strconv.Itoa(result.DaysDiff),
		formatBool(result.IsOverdue),
	}
}

func startCsvResponse(c *gin.Context, generatedAt time.Time) (*csv.Writer, bool) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=leads-%s.csv", generatedAt.Format(dateLayout)))

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders()); err != nil {
		return nil, false
	}
	return writer, true
}

func (h *Handler) parseTimezone(c *gin.Context) (*time.Location, bool) {
	tzName := strings.TrimSpace(c.Query("timezone"))
	if tzName == "" {
		return h.engine.Location(), true
	}
	location, err := time.LoadLocation(tzName)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid timezone", nil)
		return nil, false
	}
	return location, true
}

// parseDateRange reads fromDate/toDate as civil dates in location. The
// default window is the last 90 days.
func parseDateRange(c *gin.Context, now time.Time, location *time.Location) (time.Time, time.Time, error) {
	fromStr := strings.TrimSpace(c.Query("fromDate"))
	toStr := strings.TrimSpace(c.Query("toDate"))

	from := now.AddDate(0, 0, -90)
	to := now

	if fromStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, fromStr, location)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, toStr, location)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("toDate before fromDate")
	}
	return from, to, nil
}

func parseLimit(c *gin.Context, fallback int, max int) int {
	limit := fallback
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit > max {
		return max
	}
	if limit < 1 {
		return fallback
	}
	return limit
}

func formatTime(value *time.Time, location *time.Location) string {
	if value == nil {
		return ""
	}
	return value.In(location).Format(dateTimeLayout)
}

func formatBool(value bool) string {
	if value {
		return "sim"
	}
	return "não"
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
