package render

import (
	"fmt"

	"github.com/dbrowse/dbrowse/internal/model1"
)

// Base provides a base renderer implementation
type Base struct{}

// ColorerFunc returns the default colorer
func (*Base) ColorerFunc() model1.ColorerFunc {
	return model1.DefaultColorer
}

// Renderer kinds.
const (
	KindDataset = "datasets"
	KindSummary = "summary"
	KindChannel = "channels"
)

// RendererFor returns the renderer for the given table kind.
func RendererFor(kind string) (model1.Renderer, error) {
	switch kind {
	case KindDataset:
		return &Dataset{}, nil
	case KindSummary:
		return &Summary{}, nil
	case KindChannel:
		return &Channel{}, nil
	default:
		return nil, fmt.Errorf("no renderer for: %s", kind)
	}
}
