package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{
			"percent":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
			"twoPlaces": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		}).
		ParseFS(templateFS, "templates/dashboard.html"),
)

// Render writes the dashboard HTML for page.
func Render(w io.Writer, page *Page) error {
	if page == nil {
		return fmt.Errorf("dashboard page is required")
	}
	return dashboardTemplate.Execute(w, page.view())
}

type storefrontLink struct {
	Label  string
	Path   string
	Active bool
}

type pageView struct {
	*Page
	Title               string
	Storefronts         []storefrontLink
	PaymentStatuses     []string
	FulfillmentStatuses []string
}
