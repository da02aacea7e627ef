package cv

// Template is an entry of the gallery shown to signed-out visitors.
type Template struct {
	Name        string
	Category    string
	Description string
	Preview     string
}

var Templates = []Template{
	{Name: "Corporate Pro", Category: "Corporate", Description: "Elegant layout for executives and managers", Preview: "corporate"},
	{Name: "Creative Burst", Category: "Creative", Description: "For designers and creative profiles", Preview: "creative"},
	{Name: "Developer Edge", Category: "Tech", Description: "Built for developers", Preview: "developer"},
	{Name: "Minimal Clean", Category: "Minimalist", Description: "Simple and elegant", Preview: "minimal"},
	{Name: "Modern Stack", Category: "Modern", Description: "Trendy and contemporary", Preview: "modern"},
	{Name: "Executive Suite", Category: "Executive", Description: "For directors and senior leaders", Preview: "executive"},
}

// DefaultTemplate is applied by the client to new documents.
const DefaultTemplate = "Modern Stack"

func FindTemplate(name string) (Template, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
