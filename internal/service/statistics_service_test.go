package service

import (
	"context"
	"testing"
	"time"

	"otkup-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodWindowToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	start, end, err := PeriodWindow(PeriodToday, now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 999_000_000, time.UTC), end)
}

func TestPeriodWindowYesterday(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	start, end, err := PeriodWindow(PeriodYesterday, now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 29, end.Day())
}

func TestPeriodWindowCurrentWeekRunsMondayToSunday(t *testing.T) {
	// Friday 2024-03-15.
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	start, end, err := PeriodWindow(PeriodCurrentWeek, now, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 17, 23, 59, 59, 999_000_000, time.UTC), end)

	// Sunday still belongs to the same week.
	sunday := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	start, _, err = PeriodWindow(PeriodCurrentWeek, sunday, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestPeriodWindowCustomDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := PeriodWindow(PeriodCustom, now, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0), start)
	assert.Equal(t, now, end)

	customEnd := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	_, end, err = PeriodWindow(PeriodCustom, now, nil, &customEnd)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, time.UTC), end)
}

func TestPeriodWindowRejectsUnknownPeriod(t *testing.T) {
	_, _, err := PeriodWindow("fortnight", time.Now(), nil, nil)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 17, 23, 59, 59, 999_000_000, time.UTC)
	inside := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	devices := []model.Device{
		{
			Status: model.StatusSold, UpdatedAt: inside, SoldBy: "Ana",
			ActualSalePrice: decimal.NewFromInt(150), PurchasePrice: decimal.NewFromInt(100), AdditionalCost: decimal.NewFromInt(10),
			PurchaseDate: outside,
		},
		{
			Status: model.StatusSold, UpdatedAt: inside, SoldBy: "Ana",
			ActualSalePrice: decimal.NewFromInt(200), PurchasePrice: decimal.NewFromInt(150),
			PurchaseDate: inside,
		},
		{
			// Sold outside the window: excluded from sold figures.
			Status: model.StatusSold, UpdatedAt: outside, SoldBy: "Ivan",
			ActualSalePrice: decimal.NewFromInt(300), PurchasePrice: decimal.NewFromInt(100),
			PurchaseDate: outside,
		},
		{
			// Sold with no assigned seller: counted, but not attributed.
			Status: model.StatusSold, UpdatedAt: inside,
			ActualSalePrice: decimal.NewFromInt(120), PurchasePrice: decimal.NewFromInt(100),
			PurchaseDate: outside,
		},
		{
			Status: model.StatusInStock, UpdatedAt: inside,
			PurchaseDate: inside,
		},
	}

	summary := Summarize(devices, start, end)

	assert.Equal(t, 3, summary.SoldCount)
	assert.Equal(t, 2, summary.PurchasedCount)
	// 40 + 50 + 20
	assert.Equal(t, "110.00", summary.TotalMargin)

	require.Contains(t, summary.SalesByEmployee, "Ana")
	assert.Equal(t, 2, summary.SalesByEmployee["Ana"].Count)
	assert.Equal(t, "90.00", summary.SalesByEmployee["Ana"].TotalMargin)
	assert.NotContains(t, summary.SalesByEmployee, "Ivan")
}

func TestSummarizeNegativeMarginStillCounts(t *testing.T) {
	start := time.Unix(0, 0)
	end := time.Now()

	devices := []model.Device{{
		Status: model.StatusSold, UpdatedAt: time.Now().Add(-time.Hour),
		ActualSalePrice: decimal.NewFromInt(80), PurchasePrice: decimal.NewFromInt(100),
	}}

	summary := Summarize(devices, start, end)
	assert.Equal(t, 1, summary.SoldCount)
	assert.Equal(t, "-20.00", summary.TotalMargin)
}

func TestGetOverviewTotals(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Status: model.StatusSold, SoldBy: "Ana",
		ActualSalePrice: decimal.NewFromInt(150), PurchasePrice: decimal.NewFromInt(100),
	})
	seedDevice(t, repo, model.Device{Status: model.StatusReserved})
	seedDevice(t, repo, model.Device{Status: model.StatusInStock})
	seedDevice(t, repo, model.Device{Status: model.StatusInStock})

	svc := NewStatisticsService(repo)
	overview, err := svc.GetOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, overview.TotalDevices)
	assert.Equal(t, 1, overview.SoldTotal)
	assert.Equal(t, 1, overview.ReservedTotal)
	assert.Equal(t, 2, overview.InStockTotal)
	assert.Equal(t, "50.00", overview.OverallMargin)
	assert.Equal(t, 1, overview.SalesByEmployee["Ana"].Count)
}

func TestGetStatisticsRejectsBadDates(t *testing.T) {
	svc := NewStatisticsService(&fakeDeviceRepo{})
	_, err := svc.GetStatistics(context.Background(), PeriodCustom, "not-a-date", "")
	assert.Error(t, err)
}
