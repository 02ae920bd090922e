package document

const (
	ColorBackground = "#1a1a2e"
	ColorForeground = "#ffffff"
	ColorGrid       = "#3a3a4e"
	ColorSubgrid    = "#26263a"
	ColorOrigin     = "#8a8a9e"
)

// Theme maps the named colours a style may use to hex values.
var Theme = map[string]string{
	"foreground": ColorForeground,
	"background": ColorBackground,
	"red":        "#f5434b",
	"orange":     "#f59a43",
	"yellow":     "#f5d943",
	"green":      "#43f58b",
	"blue":       "#43a7f5",
	"indigo":     "#6c43f5",
	"violet":     "#b343f5",
	"pink":       "#f543b3",
}

// Color resolves a theme name or passes a literal colour through. Empty
// resolves to fallback.
func Color(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if c, ok := Theme[name]; ok {
		return c
	}
	return name
}
