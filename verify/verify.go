package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Status is the verdict for one table.
type Status string

const (
	StatusOK         Status = "OK"
	StatusDifferent  Status = "DIFFERENT"
	StatusMissing    Status = "MISSING"
	StatusLocalError Status = "LOCAL ERROR"
)

// Unavailable marks a count that could not be obtained.
const Unavailable int64 = -1

// Row compares one table.
type Row struct {
	Table  string
	Local  int64
	Remote int64
	Status Status
}

// Report is the result of a comparison.
type Report struct {
	Rows []Row
}

// AllMatch reports whether every table has the same count on both sides.
func (r *Report) AllMatch() bool {
	for _, row := range r.Rows {
		if row.Status != StatusOK {
			return false
		}
	}
	return true
}

// Compare counts every table on both sides, one table at a time. A failed
// count is recorded as Unavailable rather than aborting the comparison.
func Compare(ctx context.Context, tables []string, local, remote Counter) *Report {
	report := &Report{Rows: make([]Row, 0, len(tables))}
	for _, t := range tables {
		row := Row{Table: t, Local: count(ctx, "local", local, t), Remote: count(ctx, "remote", remote, t)}
		switch {
		case row.Local == Unavailable:
			row.Status = StatusLocalError
		case row.Remote == Unavailable:
			row.Status = StatusMissing
		case row.Local != row.Remote:
			row.Status = StatusDifferent
		default:
			row.Status = StatusOK
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func count(ctx context.Context, side string, c Counter, table string) int64 {
	n, err := c.Count(ctx, table)
	if err != nil {
		slog.Debug("count failed", "side", side, "table", table, "error", err)
		return Unavailable
	}
	return n
}

func paint(s Status) string {
	switch s {
	case StatusOK:
		return color.GreenString("%s", s)
	case StatusDifferent:
		return color.YellowString("%s", s)
	default:
		return color.RedString("%s", s)
	}
}

// Render writes the report as a table followed by a verdict.
func (r *Report) Render(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Table", "Local", "Remote", "Status"})
	for _, row := range r.Rows {
		tbl.AppendRow(table.Row{row.Table, row.Local, row.Remote, paint(row.Status)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d tables", len(r.Rows))})
	tbl.Render()

	if r.AllMatch() {
		fmt.Fprintln(w, color.GreenString("All row counts match."))
		return
	}
	fmt.Fprintln(w, color.YellowString("Some tables differ. A remote count of -1 or 0 usually means the migration has not run."))
}
