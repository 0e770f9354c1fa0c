package render

import (
	"fmt"
	"io"

	"FundRadar/internal/pipeline"
	"FundRadar/internal/ranking"
)

// Renderer writes a scorecard run to an output writer.
type Renderer interface {
	Render(w io.Writer, res *pipeline.Result, opts Options) error
}

type Options struct {
	// Rank orders rows by combined score instead of reference order.
	Rank    bool
	Weights ranking.Weights
	// Top keeps only the first N rows when positive.
	Top        int
	Color      bool
	PrettyJSON bool
}

// New returns the renderer for a --format value.
func New(format string) (Renderer, error) {
	switch format {
	case "", "table":
		return NewTableRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

// entries turns a result into the rows to print, ranked and trimmed per opts.
// Unranked entries carry no score.
func entries(res *pipeline.Result, opts Options) []ranking.Ranked {
	var out []ranking.Ranked
	if opts.Rank {
		out = ranking.Rank(res.Rows, opts.Weights)
	} else {
		out = make([]ranking.Ranked, len(res.Rows))
		for i, r := range res.Rows {
			out[i] = ranking.Ranked{ScorecardRow: r}
		}
	}
	if opts.Top > 0 && len(out) > opts.Top {
		out = out[:opts.Top]
	}
	return out
}
