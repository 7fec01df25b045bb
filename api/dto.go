/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types keep
  money in decimal.Decimal; responses flatten it to plain JSON numbers the
  frontend can format directly.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

REQUEST BODIES:
  Records are posted as earnings.DailyRecord, which decodes leniently:
  "12.5", 12.5 and "12.5km" are all 12.5, anything unparseable is 0.
  Profile and settings are posted as tracker.Profile / tracker.Settings.

SEE ALSO:
  - handlers.go: Uses these types
  - earnings/types.go: Domain types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/tracker"
)

// =============================================================================
// RECORDS
// =============================================================================

// ResultDTO is a per-record calculation result.
type ResultDTO struct {
	Gross              float64    `json:"gross"`
	PlatformCommission float64    `json:"platform_commission"`
	DistanceCost       float64    `json:"distance_cost"`
	CashCommission     float64    `json:"cash_commission"`
	TotalDeductions    float64    `json:"total_deductions"`
	Fuel               float64    `json:"fuel"`
	Net                float64    `json:"net"`
	Details            DetailsDTO `json:"details"`
}

type DetailsDTO struct {
	DistanceKm float64           `json:"distance_km"`
	RideCount  int               `json:"ride_count"`
	Tips       float64           `json:"tips"`
	Earnings   earnings.Earnings `json:"earnings"`
}

// RecordDTO is a stored record with its computed earnings.
type RecordDTO struct {
	Record earnings.DailyRecord `json:"record"`
	Result ResultDTO            `json:"result"`
}

// =============================================================================
// PERIODS
// =============================================================================

type TotalsDTO struct {
	DistanceKm         float64           `json:"distance_km"`
	RideCount          int               `json:"ride_count"`
	Gross              float64           `json:"gross"`
	PlatformCommission float64           `json:"platform_commission"`
	DistanceCost       float64           `json:"distance_cost"`
	CashCommission     float64           `json:"cash_commission"`
	Fuel               float64           `json:"fuel"`
	Net                float64           `json:"net"`
	Tips               float64           `json:"tips"`
	Earnings           earnings.Earnings `json:"earnings"`
}

type AveragesDTO struct {
	NetPerDay   float64 `json:"net_per_day"`
	GrossPerDay float64 `json:"gross_per_day"`
	KmPerDay    float64 `json:"km_per_day"`
	RidesPerDay float64 `json:"rides_per_day"`
	NetPerRide  float64 `json:"net_per_ride"`
	NetPerKm    float64 `json:"net_per_km"`
}

// DayDTO identifies a best or worst day.
type DayDTO struct {
	Date  string  `json:"date"`
	Gross float64 `json:"gross"`
	Net   float64 `json:"net"`
}

// AnalysisDTO is a period analysis. Period is omitted when the analysis is
// embedded in a larger response that already carries it.
type AnalysisDTO struct {
	Period      *calendar.Period `json:"period,omitempty"`
	RecordCount int              `json:"record_count"`
	Totals      TotalsDTO        `json:"totals"`
	Averages    AveragesDTO      `json:"averages"`
	BestDay     *DayDTO          `json:"best_day"`
	WorstDay    *DayDTO          `json:"worst_day"`
}

// ChangesDTO holds percent changes from the previous period.
type ChangesDTO struct {
	Gross       float64 `json:"gross"`
	Net         float64 `json:"net"`
	DistanceKm  float64 `json:"distance_km"`
	RideCount   float64 `json:"ride_count"`
	WorkingDays float64 `json:"working_days"`
	Tips        float64 `json:"tips"`
	NetPerDay   float64 `json:"net_per_day"`
}

type ComparisonDTO struct {
	Current  AnalysisDTO `json:"current"`
	Previous AnalysisDTO `json:"previous"`
	Changes  ChangesDTO  `json:"changes"`
}

// =============================================================================
// REPORTS
// =============================================================================

type WeekDTO struct {
	Period   calendar.Period `json:"period"`
	Analysis AnalysisDTO     `json:"analysis"`
}

type MonthReportDTO struct {
	Period   calendar.Period `json:"period"`
	Analysis AnalysisDTO     `json:"analysis"`
	Previous AnalysisDTO     `json:"previous"`
	Changes  ChangesDTO      `json:"changes"`
	Weeks    []WeekDTO       `json:"weeks"`
	Days     []RecordDTO     `json:"days"`
}

type GoalDTO struct {
	Goal     float64 `json:"goal"`
	Achieved float64 `json:"achieved"`
	Percent  float64 `json:"percent"`
}

type DashboardDTO struct {
	Date         string           `json:"date"`
	Today        *RecordDTO       `json:"today"`
	Week         AnalysisDTO      `json:"week"`
	Month        AnalysisDTO      `json:"month"`
	MonthChanges ChangesDTO       `json:"month_changes"`
	DailyGoal    GoalDTO          `json:"daily_goal"`
	MonthlyGoal  GoalDTO          `json:"monthly_goal"`
	Settings     tracker.Settings `json:"settings"`
}

// =============================================================================
// IMPORT / DEMO / ERRORS
// =============================================================================

type ImportResponse struct {
	Mode            string `json:"mode"`
	Records         int    `json:"records"`
	DuplicatesInput int    `json:"duplicates_in_input"`
	Profile         bool   `json:"profile"`
	Settings        bool   `json:"settings"`
	ExportID        string `json:"export_id,omitempty"`
}

// LoadDemoRequest selects the demo month; zero values mean the current month.
type LoadDemoRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func toResultDTO(r earnings.CalculationResult) ResultDTO {
	return ResultDTO{
		Gross:              f64(r.Gross),
		PlatformCommission: f64(r.PlatformCommission),
		DistanceCost:       f64(r.DistanceCost),
		CashCommission:     f64(r.CashCommission),
		TotalDeductions:    f64(earnings.Round2(r.TotalDeductions())),
		Fuel:               f64(r.Fuel),
		Net:                f64(r.Net),
		Details: DetailsDTO{
			DistanceKm: f64(r.Details.DistanceKm),
			RideCount:  r.Details.RideCount,
			Tips:       f64(r.Details.Tips),
			Earnings:   r.Details.Earnings,
		},
	}
}

func toRecordDTO(v tracker.RecordView) RecordDTO {
	return RecordDTO{Record: v.Record, Result: toResultDTO(v.Result)}
}

func toRecordDTOs(views []tracker.RecordView) []RecordDTO {
	dtos := make([]RecordDTO, len(views))
	for i, v := range views {
		dtos[i] = toRecordDTO(v)
	}
	return dtos
}

func toDayDTO(d *earnings.DayResult) *DayDTO {
	if d == nil {
		return nil
	}
	return &DayDTO{
		Date:  d.Record.Date.String(),
		Gross: f64(d.Result.Gross),
		Net:   f64(d.Result.Net),
	}
}

func toAnalysisDTO(a earnings.Analysis) AnalysisDTO {
	t := a.Totals
	return AnalysisDTO{
		RecordCount: a.RecordCount,
		Totals: TotalsDTO{
			DistanceKm:         f64(t.DistanceKm),
			RideCount:          t.RideCount,
			Gross:              f64(t.Gross),
			PlatformCommission: f64(t.PlatformCommission),
			DistanceCost:       f64(t.DistanceCost),
			CashCommission:     f64(t.CashCommission),
			Fuel:               f64(t.Fuel),
			Net:                f64(t.Net),
			Tips:               f64(t.Tips),
			Earnings:           t.Earnings,
		},
		Averages: AveragesDTO{
			NetPerDay:   f64(a.Averages.NetPerDay),
			GrossPerDay: f64(a.Averages.GrossPerDay),
			KmPerDay:    f64(a.Averages.KmPerDay),
			RidesPerDay: f64(a.Averages.RidesPerDay),
			NetPerRide:  f64(a.Averages.NetPerRide),
			NetPerKm:    f64(a.Averages.NetPerKm),
		},
		BestDay:  toDayDTO(a.BestDay),
		WorstDay: toDayDTO(a.WorstDay),
	}
}

func toPeriodAnalysisDTO(p calendar.Period, a earnings.Analysis) AnalysisDTO {
	dto := toAnalysisDTO(a)
	dto.Period = &p
	return dto
}

func toChangesDTO(c earnings.Changes) ChangesDTO {
	return ChangesDTO{
		Gross:       f64(c.Gross),
		Net:         f64(c.Net),
		DistanceKm:  f64(c.DistanceKm),
		RideCount:   f64(c.RideCount),
		WorkingDays: f64(c.WorkingDays),
		Tips:        f64(c.Tips),
		NetPerDay:   f64(c.NetPerDay),
	}
}

func toGoalDTO(g tracker.GoalProgress) GoalDTO {
	return GoalDTO{Goal: f64(g.Goal), Achieved: f64(g.Achieved), Percent: f64(g.Percent)}
}

func toMonthReportDTO(r tracker.MonthReport) MonthReportDTO {
	weeks := make([]WeekDTO, len(r.Weeks))
	for i, w := range r.Weeks {
		weeks[i] = WeekDTO{Period: w.Period, Analysis: toAnalysisDTO(w.Analysis)}
	}
	return MonthReportDTO{
		Period:   r.Period,
		Analysis: toAnalysisDTO(r.Analysis),
		Previous: toAnalysisDTO(r.Comparison.Previous),
		Changes:  toChangesDTO(r.Comparison.Changes),
		Weeks:    weeks,
		Days:     toRecordDTOs(r.Days),
	}
}

func toDashboardDTO(d tracker.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		Date:         d.Date.String(),
		Week:         toPeriodAnalysisDTO(d.WeekPeriod, d.Week),
		Month:        toPeriodAnalysisDTO(d.MonthPeriod, d.Month),
		MonthChanges: toChangesDTO(d.MonthChanges),
		DailyGoal:    toGoalDTO(d.DailyGoal),
		MonthlyGoal:  toGoalDTO(d.MonthlyGoal),
		Settings:     d.Settings,
	}
	if d.Today != nil {
		today := toRecordDTO(*d.Today)
		dto.Today = &today
	}
	return dto
}
