package service

import (
	"context"
	"errors"
	"time"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	PeriodToday       = "today"
	PeriodYesterday   = "yesterday"
	PeriodCurrentWeek = "current_week"
	PeriodCustom      = "custom"
	PeriodAll         = "all"
)

type EmployeeSales struct {
	Count       int    `json:"count"`
	TotalMargin string `json:"total_margin"`
}

type PeriodSummary struct {
	PeriodStart     string                   `json:"period_start"`
	PeriodEnd       string                   `json:"period_end"`
	SoldCount       int                      `json:"sold_count"`
	TotalMargin     string                   `json:"total_margin"`
	PurchasedCount  int                      `json:"purchased_count"`
	SalesByEmployee map[string]EmployeeSales `json:"sales_by_employee"`
}

type OverviewResponse struct {
	Today     PeriodSummary `json:"today"`
	Yesterday PeriodSummary `json:"yesterday"`
	Week      PeriodSummary `json:"week"`

	TotalDevices    int                      `json:"total_devices"`
	SoldTotal       int                      `json:"sold_total"`
	ReservedTotal   int                      `json:"reserved_total"`
	InStockTotal    int                      `json:"in_stock_total"`
	OverallMargin   string                   `json:"overall_margin"`
	SalesByEmployee map[string]EmployeeSales `json:"sales_by_employee"`
}

type StatisticsService interface {
	GetStatistics(ctx context.Context, period, customStart, customEnd string) (*PeriodSummary, error)
	GetOverview(ctx context.Context) (*OverviewResponse, error)
}

type statisticsService struct {
	devices repository.DeviceRepository
	now     func() time.Time
}

func NewStatisticsService(devices repository.DeviceRepository) StatisticsService {
	return &statisticsService{devices: devices, now: time.Now}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// PeriodWindow resolves a named reporting period into inclusive bounds.
// Weeks run Monday through Sunday. For a custom period a missing start
// defaults to the epoch and a missing end to now; a given end is extended to
// the end of its day.
func PeriodWindow(period string, now time.Time, customStart, customEnd *time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodToday:
		return startOfDay(now), endOfDay(now), nil
	case PeriodYesterday:
		y := now.AddDate(0, 0, -1)
		return startOfDay(y), endOfDay(y), nil
	case PeriodCurrentWeek:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday closes the week
		}
		monday := startOfDay(now.AddDate(0, 0, -(weekday - 1)))
		sunday := endOfDay(monday.AddDate(0, 0, 6))
		return monday, sunday, nil
	case PeriodCustom:
		start := time.Unix(0, 0)
		if customStart != nil {
			start = startOfDay(*customStart)
		}
		end := now
		if customEnd != nil {
			end = endOfDay(*customEnd)
		}
		return start, end, nil
	case PeriodAll, "":
		return time.Unix(0, 0), now, nil
	default:
		return time.Time{}, time.Time{}, errors.New("unknown statistics period")
	}
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Summarize builds the sold/purchased figures for one window. The purchase
// date places a device in the purchased count; the last-modified timestamp
// places a sold device in the sold figures, since that is when the sale was
// recorded.
func Summarize(devices []model.Device, start, end time.Time) PeriodSummary {
	summary := PeriodSummary{
		PeriodStart:     start.Format(time.RFC3339),
		PeriodEnd:       end.Format(time.RFC3339),
		SalesByEmployee: map[string]EmployeeSales{},
	}

	totalMargin := decimal.Zero
	employeeMargins := map[string]decimal.Decimal{}
	employeeCounts := map[string]int{}

	for i := range devices {
		d := &devices[i]
		if inWindow(d.PurchaseDate, start, end) {
			summary.PurchasedCount++
		}
		if d.Status != model.StatusSold || !inWindow(d.UpdatedAt, start, end) {
			continue
		}
		summary.SoldCount++
		margin := d.ActualSalePrice.Sub(d.PurchasePrice).Sub(d.AdditionalCost)
		totalMargin = totalMargin.Add(margin)
		if d.SoldBy != "" {
			employeeCounts[d.SoldBy]++
			employeeMargins[d.SoldBy] = employeeMargins[d.SoldBy].Add(margin)
		}
	}

	summary.TotalMargin = totalMargin.Round(2).StringFixed(2)
	for name, count := range employeeCounts {
		summary.SalesByEmployee[name] = EmployeeSales{
			Count:       count,
			TotalMargin: employeeMargins[name].Round(2).StringFixed(2),
		}
	}
	return summary
}

func (s *statisticsService) GetStatistics(ctx context.Context, period, customStart, customEnd string) (*PeriodSummary, error) {
	var startPtr, endPtr *time.Time
	if customStart != "" {
		t, err := time.Parse(dateLayout, customStart)
		if err != nil {
			return nil, errors.New("invalid start date")
		}
		startPtr = &t
	}
	if customEnd != "" {
		t, err := time.Parse(dateLayout, customEnd)
		if err != nil {
			return nil, errors.New("invalid end date")
		}
		endPtr = &t
	}

	start, end, err := PeriodWindow(period, s.now(), startPtr, endPtr)
	if err != nil {
		return nil, err
	}

	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := Summarize(devices, start, end)
	return &summary, nil
}

func (s *statisticsService) GetOverview(ctx context.Context) (*OverviewResponse, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	todayStart, todayEnd, _ := PeriodWindow(PeriodToday, now, nil, nil)
	yStart, yEnd, _ := PeriodWindow(PeriodYesterday, now, nil, nil)
	wStart, wEnd, _ := PeriodWindow(PeriodCurrentWeek, now, nil, nil)

	res := &OverviewResponse{
		Today:           Summarize(devices, todayStart, todayEnd),
		Yesterday:       Summarize(devices, yStart, yEnd),
		Week:            Summarize(devices, wStart, wEnd),
		TotalDevices:    len(devices),
		SalesByEmployee: map[string]EmployeeSales{},
	}

	overallMargin := decimal.Zero
	employeeMargins := map[string]decimal.Decimal{}
	employeeCounts := map[string]int{}

	for i := range devices {
		d := &devices[i]
		switch d.Status {
		case model.StatusSold:
			res.SoldTotal++
			margin := d.ActualSalePrice.Sub(d.PurchasePrice).Sub(d.AdditionalCost)
			overallMargin = overallMargin.Add(margin)
			if d.SoldBy != "" {
				employeeCounts[d.SoldBy]++
				employeeMargins[d.SoldBy] = employeeMargins[d.SoldBy].Add(margin)
			}
		case model.StatusReserved:
			res.ReservedTotal++
		case model.StatusInStock:
			res.InStockTotal++
		}
	}

	res.OverallMargin = overallMargin.Round(2).StringFixed(2)
	for name, count := range employeeCounts {
		res.SalesByEmployee[name] = EmployeeSales{
			Count:       count,
			TotalMargin: employeeMargins[name].Round(2).StringFixed(2),
		}
	}
	return res, nil
}
