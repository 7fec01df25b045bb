package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/tracker"
)

// RenderMonthPDF writes a one-page A4 summary of a month report.
func RenderMonthPDF(w io.Writer, report tracker.MonthReport, profile tracker.Profile, settings tracker.Settings) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	cur := settings.Currency
	a := report.Analysis
	t := a.Totals

	title := fmt.Sprintf("Monthly report - %s %d", report.Period.Start.Month(), report.Period.Start.Year())
	pdf.SetTitle(title, true)
	pdf.SetCreator(AppName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	if profile.DriverName != "" {
		pdf.Cell(0, 7, tr("Driver: "+profile.DriverName))
		pdf.Ln(6)
	}
	if profile.VehicleModel != "" || profile.LicensePlate != "" {
		pdf.Cell(0, 7, tr(fmt.Sprintf("Vehicle: %s %s", profile.VehicleModel, profile.LicensePlate)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", report.Period.Start, report.Period.End))
	pdf.Ln(10)

	section(pdf, "Earnings")
	row(pdf, "Gross", money(t.Gross, cur))
	row(pdf, "Platform commission", money(t.PlatformCommission.Neg(), cur))
	row(pdf, "Distance cost", money(t.DistanceCost.Neg(), cur))
	row(pdf, "Cash commission", money(t.CashCommission.Neg(), cur))
	row(pdf, "Fuel", money(t.Fuel, cur))
	pdf.SetFont("Helvetica", "B", 11)
	row(pdf, "Net", money(t.Net, cur))
	pdf.SetFont("Helvetica", "", 11)
	row(pdf, "Tips (not in net)", money(t.Tips, cur))
	pdf.Ln(4)

	section(pdf, "Activity")
	row(pdf, "Working days", fmt.Sprintf("%d of %d", a.RecordCount, report.Period.Len()))
	row(pdf, "Distance", t.DistanceKm.StringFixed(2)+" km")
	row(pdf, "Rides", fmt.Sprintf("%d", t.RideCount))
	row(pdf, "Net per day", money(a.Averages.NetPerDay, cur))
	row(pdf, "Net per ride", money(a.Averages.NetPerRide, cur))
	row(pdf, "Net per km", money(a.Averages.NetPerKm, cur))
	if a.BestDay != nil {
		row(pdf, "Best day", fmt.Sprintf("%s (%s)", a.BestDay.Record.Date, money(a.BestDay.Result.Net, cur)))
	}
	if a.WorstDay != nil {
		row(pdf, "Worst day", fmt.Sprintf("%s (%s)", a.WorstDay.Record.Date, money(a.WorstDay.Result.Net, cur)))
	}
	row(pdf, "Net vs previous month", percent(report.Comparison.Changes.Net))
	pdf.Ln(4)

	section(pdf, "Weeks")
	widths := []float64{50, 25, 25, 35, 35}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Week", "Days", "Rides", "Gross", "Net"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, wk := range report.Weeks {
		wt := wk.Analysis.Totals
		cells := []string{
			fmt.Sprintf("%s - %s", wk.Period.Start, wk.Period.End),
			fmt.Sprintf("%d", wk.Analysis.RecordCount),
			fmt.Sprintf("%d", wt.RideCount),
			money(wt.Gross, cur),
			money(wt.Net, cur),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return fmt.Errorf("failed to render pdf: %w", pdf.Error())
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, name string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, name)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(70, 6, label)
	pdf.CellFormat(50, 6, value, "", 0, "R", false, 0, "")
	pdf.Ln(6)
}

func money(d decimal.Decimal, currency string) string {
	return earnings.Round2(d).StringFixed(2) + " " + currency
}

func percent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}
