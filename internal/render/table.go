package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"FundRadar/internal/pipeline"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, res *pipeline.Result, opts Options) error {
	title := fmt.Sprintf("FII SCORECARD %s", res.Range)
	if opts.Color {
		title = text.Bold.Sprint(title)
	}
	fmt.Fprintln(w, title)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	if !opts.Color {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
	}

	hdr := table.Row{"#", "TICKER", "SECTOR", "DISCOUNT", "DY %", "P/VPA", "VOLATILITY"}
	if opts.Rank {
		hdr = append(hdr, "SCORE", "GRADE")
	}
	tw.AppendHeader(hdr)

	// Numeric columns are right aligned; GRADE stays left.
	cfgs := []table.ColumnConfig{{Number: 3, WidthMax: 24}}
	last := 7
	if opts.Rank {
		last = 8
	}
	for n := 4; n <= last; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)

	for i, e := range entries(res, opts) {
		discount := fmt.Sprintf("%+.2f%%", e.Discount*100)
		if opts.Color {
			switch {
			case e.Discount < 0:
				discount = text.Colors{text.FgRed}.Sprint(discount)
			case e.Discount > 0:
				discount = text.Colors{text.FgGreen}.Sprint(discount)
			}
		}
		row := table.Row{
			i + 1,
			e.Ticker,
			e.Sector,
			discount,
			fmt.Sprintf("%.2f", e.DividendYield),
			fmt.Sprintf("%.2f", e.PriceToBook),
			fmt.Sprintf("%.4f", e.Volatility),
		}
		if opts.Rank {
			row = append(row, fmt.Sprintf("%+.3f", e.Score), e.Grade)
		}
		tw.AppendRow(row)
	}
	tw.Render()

	if n := len(res.Report.Dropped); n > 0 {
		parts := make([]string, 0, n)
		for _, d := range res.Report.Dropped {
			parts = append(parts, fmt.Sprintf("%s(%s)", d.Ticker, d.Reason))
		}
		fmt.Fprintf(w, "\ndropped %d: %s\n", n, strings.Join(parts, ", "))
	}
	return nil
}
