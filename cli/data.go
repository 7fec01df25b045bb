package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/ridebook/export"
	"github.com/warp/ridebook/tracker"
)

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

func newExportCmd(cfgPath func() string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records, profile and settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfgPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ds, err := a.svc.Export(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			meta, err := export.Encode(w, ds, time.Now())
			if err != nil {
				return err
			}
			a.log.Info().Str("export_id", meta.ExportID).Int("records", meta.RecordCount).Msg("export written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(cfgPath func() string) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an export document (merge by date, or --replace)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ds, meta, err := export.Decode(f)
			if err != nil {
				return err
			}

			a, err := openApp(cfgPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.Import(cmd.Context(), ds, replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%s, %d duplicate dates in file, export %s)\n",
				res.Records, res.Mode, res.DuplicatesInput, meta.ExportID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing records first")
	return cmd
}

// =============================================================================
// REPORT / DEMO
// =============================================================================

func newReportCmd(cfgPath func() string) *cobra.Command {
	var month, pdfPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a monthly report, or write it as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(cfgPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			report, err := a.svc.MonthReport(ctx, year, m)
			if err != nil {
				return err
			}
			settings, err := a.svc.GetSettings(ctx)
			if err != nil {
				return err
			}

			if pdfPath == "" {
				return printReport(cmd.OutOrStdout(), report, settings.Currency)
			}

			profile, err := a.svc.GetProfile(ctx)
			if err != nil {
				return err
			}
			f, err := os.Create(pdfPath)
			if err != nil {
				return err
			}
			if err := export.RenderMonthPDF(f, report, profile, settings); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", pdfPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the report as PDF to this file")
	return cmd
}

func printReport(w io.Writer, r tracker.MonthReport, currency string) error {
	t := r.Analysis.Totals
	money := func(d decimal.Decimal) string { return d.StringFixed(2) + " " + currency }

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s\n", r.Period)
	fmt.Fprintf(tw, "Working days\t%d of %d\n", r.Analysis.RecordCount, r.Period.Len())
	fmt.Fprintf(tw, "Rides\t%d\n", t.RideCount)
	fmt.Fprintf(tw, "Distance\t%s km\n", t.DistanceKm.StringFixed(2))
	fmt.Fprintf(tw, "Gross\t%s\n", money(t.Gross))
	fmt.Fprintf(tw, "Deductions\t%s\n", money(t.PlatformCommission.Add(t.DistanceCost).Add(t.CashCommission)))
	fmt.Fprintf(tw, "Fuel\t%s\n", money(t.Fuel))
	fmt.Fprintf(tw, "Net\t%s\n", money(t.Net))
	fmt.Fprintf(tw, "Net per day\t%s\n", money(r.Analysis.Averages.NetPerDay))
	fmt.Fprintf(tw, "Net vs previous month\t%s%%\n", r.Comparison.Changes.Net.StringFixed(2))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Week\tDays\tNet")
	for _, wk := range r.Weeks {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", wk.Period, wk.Analysis.RecordCount, money(wk.Analysis.Totals.Net))
	}
	return tw.Flush()
}

func newDemoCmd(cfgPath func() string) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Merge a generated demo month into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(cfgPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.LoadDemo(cmd.Context(), year, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d demo records for %d-%02d\n", res.Records, year, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	return cmd
}
