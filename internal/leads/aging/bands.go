package aging

// Color is a display token understood by the dashboard's progress bar.
type Color string

const (
	ColorDarkRed Color = "dark-red"
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorAmber   Color = "amber"
	ColorEmerald Color = "emerald"
	ColorGreen   Color = "green"
)

var colorHex = map[Color]string{
	ColorDarkRed: "#7f1d1d",
	ColorRed:     "#ef4444",
	ColorOrange:  "#f97316",
	ColorAmber:   "#f59e0b",
	ColorEmerald: "#10b981",
	ColorGreen:   "#22c55e",
}

// Hex returns the CSS color for c, or an empty string for unknown tokens.
func (c Color) Hex() string {
	return colorHex[c]
}

// Band is a stable machine name for a result's urgency bucket.
type Band string

const (
	BandNew      Band = "novo"
	BandOnTime   Band = "no_prazo"
	BandActive   Band = "ativo"
	BandWarning  Band = "atencao"
	BandUrgent   Band = "urgente"
	BandCritical Band = "critico"
	BandOverdue  Band = "vencido"
)

const (
	LabelNew      = "Novo"
	LabelOnTime   = "No Prazo"
	LabelActive   = "Ativo"
	LabelWarning  = "Atenção"
	LabelUrgent   = "Urgente"
	LabelCritical = "Crítico"
	LabelOverdue  = "Vencido"
)

// Bands lists every band from least to most urgent.
var Bands = []Band{BandNew, BandOnTime, BandActive, BandWarning, BandUrgent, BandCritical, BandOverdue}

// ParseBand validates a band name from a query string.
func ParseBand(s string) (Band, bool) {
	for _, b := range Bands {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// classify maps a clamped percentage to its color, label and band.
// Thresholds are checked from most to least urgent; the first match wins.
func classify(pct int) (Color, string, Band) {
	switch {
	case pct >= 100:
		return ColorDarkRed, LabelOverdue, BandOverdue
	case pct >= 80:
		return ColorRed, LabelCritical, BandCritical
	case pct > 50:
		return ColorOrange, LabelUrgent, BandUrgent
	case pct > 25:
		return ColorAmber, LabelWarning, BandWarning
	case pct > 0:
		return ColorEmerald, LabelActive, BandActive
	default:
		return ColorGreen, LabelOnTime, BandOnTime
	}
}

var bandDisplay = map[Band]struct {
	color Color
	label string
}{
	BandNew:      {ColorGreen, LabelNew},
	BandOnTime:   {ColorGreen, LabelOnTime},
	BandActive:   {ColorEmerald, LabelActive},
	BandWarning:  {ColorAmber, LabelWarning},
	BandUrgent:   {ColorOrange, LabelUrgent},
	BandCritical: {ColorRed, LabelCritical},
	BandOverdue:  {ColorDarkRed, LabelOverdue},
}

// Label is the display label of b.
func (b Band) Label() string { return bandDisplay[b].label }

// Color is the display color of b.
func (b Band) Color() Color { return bandDisplay[b].color }
