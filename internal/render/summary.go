package render

import (
	"fmt"
	"sort"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/model"
	"github.com/dbrowse/dbrowse/internal/model1"
	"github.com/fvbommel/sortorder"
)

// SummaryField is one entry of a header summary.
type SummaryField struct {
	Name  string
	Value any
}

// Summary renders summary fields
type Summary struct {
	Base
}

// Header returns the summary header
func (*Summary) Header(string) model1.Header {
	return model1.Header{
		{Name: "FIELD"},
		{Name: "VALUE"},
	}
}

// Render renders a summary field to a row
func (*Summary) Render(o any, _ string, row *model1.Row) error {
	f, ok := o.(SummaryField)
	if !ok {
		return fmt.Errorf("expected SummaryField, got %T", o)
	}

	value := FormatValue(f.Value)
	if f.Name == dao.FieldTime {
		if sec, ok := f.Value.(float64); ok {
			value = FormatEpoch(sec)
		}
	}

	row.ID = f.Name
	row.Fields = model1.Fields{f.Name, Truncate(value, MaxValueWidth)}
	return nil
}

// SummaryFields orders a summary for display: schema fields first, then
// custom fields in natural order.
func SummaryFields(s model.Summary) []SummaryField {
	out := make([]SummaryField, 0, len(s))
	schema := make(map[string]struct{}, len(dao.SummaryFields))
	for _, name := range dao.SummaryFields {
		schema[name] = struct{}{}
		if v, ok := s[name]; ok {
			out = append(out, SummaryField{Name: name, Value: v})
		}
	}

	custom := make([]string, 0, len(s))
	for name := range s {
		if _, ok := schema[name]; !ok {
			custom = append(custom, name)
		}
	}
	sort.Slice(custom, func(i, j int) bool {
		return sortorder.NaturalLess(custom[i], custom[j])
	})
	for _, name := range custom {
		out = append(out, SummaryField{Name: name, Value: s[name]})
	}

	return out
}

// SummaryObjects adapts a summary for rendering.
func SummaryObjects(s model.Summary) []any {
	ff := SummaryFields(s)
	oo := make([]any, 0, len(ff))
	for _, f := range ff {
		oo = append(oo, f)
	}
	return oo
}
