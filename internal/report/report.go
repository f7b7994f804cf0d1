//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report renders analytics results as tables, CSV, or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formats supported by Write.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// NullCell is the rendered value for undefined ratios and margins in
// table and CSV output. JSON output uses null.
const NullCell = "-"

// Report is a rendered result set: a name, column headers, and rows of
// pre-formatted cells. Money cells are fixed to two decimals before
// they reach a Report.
type Report struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Write renders the report to w in the requested format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatTable:
		return r.writeTable(w)
	case FormatCSV:
		return r.writeCSV(w)
	case FormatJSON:
		return r.writeJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) writeTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%d rows)\n", r.Name, len(r.Rows)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, col := range r.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, row := range r.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (r *Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r *Report) writeJSON(w io.Writer) error {
	type jsonReport struct {
		Name string           `json:"name"`
		Rows []map[string]any `json:"rows"`
	}

	out := jsonReport{Name: r.Name, Rows: make([]map[string]any, 0, len(r.Rows))}
	for _, row := range r.Rows {
		obj := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				if row[i] == NullCell {
					obj[col] = nil
				} else {
					obj[col] = row[i]
				}
			}
		}
		out.Rows = append(out.Rows, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
