package domain

import (
	"strconv"
	"strings"
)

// TemplateData holds the per-recipient values for message placeholders
type TemplateData struct {
	Name     string
	Mandalam string
	Year     int
	RegNo    string
	Phone    string
	Emirate  string
}

// RenderTemplate substitutes {{name}}, {{mandalam}}, {{year}}, {{regNo}},
// {{phone}} and {{emirate}}. Unknown placeholders are left as written.
func RenderTemplate(tmpl string, d TemplateData) string {
	year := ""
	if d.Year > 0 {
		year = strconv.Itoa(d.Year)
	}
	r := strings.NewReplacer(
		"{{name}}", d.Name,
		"{{mandalam}}", d.Mandalam,
		"{{year}}", year,
		"{{regNo}}", d.RegNo,
		"{{phone}}", d.Phone,
		"{{emirate}}", d.Emirate,
	)
	return r.Replace(tmpl)
}
