package render

import (
	"fmt"
	"strconv"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/model1"
)

// Dataset renders run headers
type Dataset struct {
	Base
}

// Header returns the dataset header
func (*Dataset) Header(string) model1.Header {
	return model1.Header{
		{Name: "UID"},
		{Name: "SCAN", Attrs: model1.Attrs{Numeric: true}},
		{Name: "START", Attrs: model1.Attrs{Time: true}},
		{Name: "OWNER"},
		{Name: "BEAMLINE"},
		{Name: "PLAN", Attrs: model1.Attrs{Wide: true}},
		{Name: "DESCRIPTORS", Attrs: model1.Attrs{Numeric: true}},
	}
}

// Render renders a run header to a row
func (*Dataset) Render(o any, _ string, row *model1.Row) error {
	h, ok := o.(*dao.Header)
	if !ok {
		return fmt.Errorf("expected *dao.Header, got %T", o)
	}

	plan, _ := h.Custom["plan_name"].(string)

	row.ID = string(h.UID)
	row.Fields = model1.Fields{
		h.UID.Short(),
		strconv.FormatInt(h.ScanID, 10),
		ToAge(h.Start()),
		Missing(h.Owner),
		Missing(h.BeamlineID),
		NA(plan),
		AsCount(len(h.EventDescriptors)),
	}
	return nil
}

// DatasetObjects adapts headers for rendering.
func DatasetObjects(hh []*dao.Header) []any {
	oo := make([]any, 0, len(hh))
	for _, h := range hh {
		oo = append(oo, h)
	}
	return oo
}
