package notion

import "strings"

// Page is a Notion page. Only the property shapes this service reads are
// decoded; everything else on the property is dropped.
type Page struct {
	ID         string                   `json:"id"`
	Properties map[string]PropertyValue `json:"properties"`
}

type PropertyValue struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
}

// Title joins the spans of the named title property.
func (p Page) Title(property string) string {
	prop, ok := p.Properties[property]
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, span := range prop.Title {
		sb.WriteString(span.PlainText)
	}
	return sb.String()
}

// Checkbox returns the named checkbox property, false when absent.
func (p Page) Checkbox(property string) bool {
	prop, ok := p.Properties[property]
	if !ok || prop.Checkbox == nil {
		return false
	}
	return *prop.Checkbox
}

type Database struct {
	ID         string                      `json:"id"`
	Title      []RichText                  `json:"title"`
	Properties map[string]DatabaseProperty `json:"properties"`
}

type DatabaseProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Properties is the property map sent on page create and update.
type Properties map[string]any

func TitleProperty(content string) any {
	return map[string]any{"title": []RichText{Text(content)}}
}

func DateProperty(start string) any {
	return map[string]any{"date": map[string]string{"start": start}}
}

func SelectProperty(name string) any {
	return map[string]any{"select": map[string]string{"name": name}}
}

func MultiSelectProperty(names ...string) any {
	options := make([]map[string]string, 0, len(names))
	for _, n := range names {
		options = append(options, map[string]string{"name": n})
	}
	return map[string]any{"multi_select": options}
}

func CheckboxProperty(v bool) any {
	return map[string]any{"checkbox": v}
}

// Filter is a database query filter object.
type Filter map[string]any

// CheckboxEquals matches pages whose checkbox property equals v.
func CheckboxEquals(property string, v bool) Filter {
	return Filter{
		"property": property,
		"checkbox": map[string]bool{"equals": v},
	}
}
