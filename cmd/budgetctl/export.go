package main

import (
	"bytes"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/report"
)

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a transaction summary as CSV or Excel",
		Long: `Export writes every transaction in the selected categories whose date
falls inside the time frame. --start and --end (YYYY-MM-DD) override --frame.
Use --out - to write to standard output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, user, err := a.open(cmd)
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("frame", a.v.GetString("frame"))
			q.Set("start", a.v.GetString("start"))
			q.Set("end", a.v.GetString("end"))
			q.Set("format", a.v.GetString("format"))
			q["category"], _ = cmd.Flags().GetStringArray("category")

			params, err := report.ParseExportParams(q, engine.Now())
			if err != nil {
				return err
			}

			x, err := engine.Export(cmd.Context(), report.ExportRequest{
				User:       user,
				Window:     params.Window,
				Categories: params.Categories,
			})
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			out := a.v.GetString("out")
			if params.Format == report.FormatXLSX {
				err = x.WriteXLSX(&buf)
				if out == "" {
					out = report.XLSXFilename
				}
			} else {
				err = x.WriteCSV(&buf)
				if out == "" {
					out = report.CSVFilename
				}
			}
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d transactions (%s to %s) to %s\n",
				len(x.Rows), x.Window.Start.Format(), x.Window.End.Format(), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("frame", "Week", "time frame (Week, Month or Year)")
	f.String("start", "", "custom range start (YYYY-MM-DD)")
	f.String("end", "", "custom range end (YYYY-MM-DD)")
	f.StringArray("category", nil, "category to include, repeat for several")
	f.String("format", report.FormatCSV, "output format (csv or xlsx)")
	f.StringP("out", "o", "", "output path, - for stdout")
	for _, name := range []string{"frame", "start", "end", "format", "out"} {
		_ = a.v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}
