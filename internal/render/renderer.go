package render

import (
	"context"
	"encoding/json"
	"io"
)

// Renderer draws figures.
type Renderer interface {
	Render(ctx context.Context, fig Figure) error
}

// JSONRenderer writes figures as JSON, one document per figure.
type JSONRenderer struct {
	W      io.Writer
	Indent bool
}

// Render encodes fig to the writer.
func (r JSONRenderer) Render(_ context.Context, fig Figure) error {
	enc := json.NewEncoder(r.W)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(fig)
}

var _ Renderer = JSONRenderer{}
