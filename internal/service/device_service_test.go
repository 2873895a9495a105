package service

import (
	"context"
	"errors"
	"testing"

	"otkup-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeviceServiceForTest(repo *fakeDeviceRepo, sync StockSyncTrigger) (DeviceService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := NewDeviceService(repo, &fakeSequenceRepo{}, fakeTxManager{}, sync, notifier)
	return svc, notifier
}

func TestComputeMargins(t *testing.T) {
	amount, percent := computeMargins(decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(150))
	assert.Equal(t, "40.00", amount.StringFixed(2))
	assert.Equal(t, "36.36", percent.StringFixed(2))

	// Sale price at or below total cost yields no margin.
	amount, percent = computeMargins(decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(110))
	assert.True(t, amount.IsZero())
	assert.True(t, percent.IsZero())

	// No purchase price means margin is meaningless.
	amount, percent = computeMargins(decimal.Zero, decimal.Zero, decimal.NewFromInt(150))
	assert.True(t, amount.IsZero())
	assert.True(t, percent.IsZero())
}

func TestCreateDeviceAssignsSequentialOrderNumbers(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, notifier := newDeviceServiceForTest(repo, nil)

	first, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)
	second, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Samsung", Model: "Galaxy S22"})
	require.NoError(t, err)

	assert.Equal(t, "OTK-000001", first.OrderNumber)
	assert.Equal(t, "OTK-000002", second.OrderNumber)
	assert.Equal(t, model.StatusInStock, first.Status)
	assert.Equal(t, 2, notifier.count("devices"))
}

func TestCreateWebDeviceDefaults(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	device, err := svc.CreateWebDevice(context.Background(), CreateWebDeviceRequest{
		Brand: "Apple", Model: "iPhone 14", IMEI: "356000000000001",
	})
	require.NoError(t, err)

	assert.Equal(t, "Web Izvor", device.SellerName)
	assert.Equal(t, "-", device.SellerIDNumber)
	assert.True(t, device.ForWeb)
	assert.Equal(t, model.ConditionNew, device.Condition)
}

func TestUpdateDeviceMergesAndRecomputesMargins(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{
		Brand: "Apple", Model: "iPhone 13", PurchasePrice: "100",
	})
	require.NoError(t, err)

	sale := "150"
	additional := "10"
	updated, err := svc.UpdateDevice(context.Background(), created.ID, UpdateDeviceRequest{
		ActualSalePrice: &sale,
		AdditionalCost:  &additional,
	})
	require.NoError(t, err)

	// Untouched fields survive the merge.
	assert.Equal(t, "Apple", updated.Brand)
	assert.Equal(t, "40.00", updated.MarginAmount)
	assert.Equal(t, "36.36", updated.MarginPercent)
}

func TestUpdateDeviceRejectsNegativePrice(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)

	bad := "-5"
	_, err = svc.UpdateDevice(context.Background(), created.ID, UpdateDeviceRequest{PurchasePrice: &bad})
	assert.Error(t, err)
}

func TestChangeStatusSoldRequiresSalePrice(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusSold})
	require.Error(t, err)

	// The rejected transition must leave the device untouched.
	reloaded, err := svc.GetDevice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInStock, reloaded.Status)
}

func TestChangeStatusBackToStockResetsSaleFields(t *testing.T) {
	repo := &fakeDeviceRepo{}
	sync := &fakeSyncTrigger{message: "ok"}
	svc, _ := newDeviceServiceForTest(repo, sync)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{
		Brand: "Apple", Model: "iPhone 13", PurchasePrice: "100",
	})
	require.NoError(t, err)

	sale := "150"
	_, err = svc.UpdateDevice(context.Background(), created.ID, UpdateDeviceRequest{ActualSalePrice: &sale})
	require.NoError(t, err)

	sold, err := svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusSold, SoldBy: "Ivan"})
	require.NoError(t, err)
	assert.Equal(t, "Ivan", sold.Device.SoldBy)

	back, err := svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusInStock})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInStock, back.Device.Status)
	assert.Equal(t, "0.00", back.Device.ActualSalePrice)
	assert.Equal(t, "0.00", back.Device.MarginAmount)
	assert.Equal(t, "0.00", back.Device.MarginPercent)
	assert.Equal(t, "", back.Device.SoldBy)
}

func TestChangeStatusTriggersSyncOnlyLeavingStock(t *testing.T) {
	repo := &fakeDeviceRepo{}
	sync := &fakeSyncTrigger{message: "synced"}
	svc, _ := newDeviceServiceForTest(repo, sync)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{
		Brand: "Apple", Model: "iPhone 13", PurchasePrice: "100",
	})
	require.NoError(t, err)

	reserved, err := svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusReserved})
	require.NoError(t, err)
	require.NotNil(t, reserved.Sync)
	assert.Equal(t, "synced", reserved.Sync.Message)
	assert.Equal(t, 1, sync.calls)

	// Reserved to sold does not leave stock, so no sync fires.
	sale := "150"
	_, err = svc.UpdateDevice(context.Background(), created.ID, UpdateDeviceRequest{ActualSalePrice: &sale})
	require.NoError(t, err)
	sold, err := svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusSold})
	require.NoError(t, err)
	assert.Nil(t, sold.Sync)
	assert.Equal(t, 1, sync.calls)
}

func TestChangeStatusSurvivesSyncFailure(t *testing.T) {
	repo := &fakeDeviceRepo{}
	sync := &fakeSyncTrigger{err: errors.New("storefront unreachable")}
	svc, _ := newDeviceServiceForTest(repo, sync)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)

	res, err := svc.ChangeStatus(context.Background(), created.ID, StatusChangeRequest{Status: model.StatusReserved})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, res.Device.Status)
	require.NotNil(t, res.Sync)
	assert.Contains(t, res.Sync.Error, "unreachable")
}

func TestAddNote(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)

	withNote, err := svc.AddNote(context.Background(), created.ID, NoteRequest{Text: "screen replaced"})
	require.NoError(t, err)
	require.Len(t, withNote.Notes, 1)
	assert.Equal(t, "screen replaced", withNote.Notes[0].Text)
	assert.NotEmpty(t, withNote.Notes[0].CreatedAt)
}

func TestDeleteDeviceRemovesIt(t *testing.T) {
	repo := &fakeDeviceRepo{}
	svc, _ := newDeviceServiceForTest(repo, nil)

	created, err := svc.CreateDevice(context.Background(), CreateDeviceRequest{Brand: "Apple", Model: "iPhone 13"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDevice(context.Background(), created.ID))
	_, err = svc.GetDevice(context.Background(), created.ID)
	assert.Error(t, err)
}
