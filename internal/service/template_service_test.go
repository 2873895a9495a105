package service

import (
	"context"
	"testing"

	"otkup-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDevice(t *testing.T, repo *fakeDeviceRepo, d model.Device) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &d))
}

func newTemplateServiceForTest(repo *fakeDeviceRepo) TemplateService {
	return NewTemplateService(repo, &fakeSequenceRepo{}, fakeTxManager{}, nil)
}

func TestListTemplatesGroupsInFirstSeenOrder(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128"})
	seedDevice(t, repo, model.Device{Brand: "Samsung", Model: "Galaxy S22", Color: "White", StorageGB: "256"})
	seedDevice(t, repo, model.Device{Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128"})

	svc := newTemplateServiceForTest(repo)
	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "iPhone 13", rows[0].Model)
	assert.Equal(t, 2, rows[0].DeviceCount)
	assert.Equal(t, "Galaxy S22", rows[1].Model)
}

func TestListTemplatesSearch(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128"})
	seedDevice(t, repo, model.Device{Brand: "Samsung", Model: "Galaxy S22", Color: "White", StorageGB: "256"})

	svc := newTemplateServiceForTest(repo)
	rows, err := svc.ListTemplates(context.Background(), "galaxy")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Samsung", rows[0].Brand)
}

func TestDraftDefaultsPreferWebListedDevice(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionUsed, PurchasePrice: decimal.NewFromInt(200),
	})
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(400),
		ExternalProductID: "w-9",
	})
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(500),
		ExternalProductID: "w-17", ForWeb: true,
	})

	svc := newTemplateServiceForTest(repo)
	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "w-17", rows[0].ExternalProductID)
	assert.True(t, rows[0].ForWeb)
	assert.Equal(t, model.ConditionNew, rows[0].Condition)
	// Listing data comes from the web-listed winner, but the price comes
	// from the first device of the winning condition.
	assert.Equal(t, "400.00", rows[0].PurchasePrice)
}

func TestDraftPriceSeedsFromFirstDeviceOfChosenCondition(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionUsed, PurchasePrice: decimal.NewFromInt(200),
	})
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionUsed, PurchasePrice: decimal.NewFromInt(300),
		ExternalProductID: "w-5", ForWeb: true,
	})

	svc := newTemplateServiceForTest(repo)
	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, model.ConditionUsed, rows[0].Condition)
	assert.Equal(t, "w-5", rows[0].ExternalProductID)
	assert.True(t, rows[0].ForWeb)
	assert.Equal(t, "200.00", rows[0].PurchasePrice)
}

func TestDraftDefaultsFallBackThroughConditions(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Nokia", Model: "3310", Color: "Blue", StorageGB: "0",
		Condition: model.ConditionUsed, PurchasePrice: decimal.NewFromInt(30),
	})

	svc := newTemplateServiceForTest(repo)
	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, model.ConditionUsed, rows[0].Condition)
	assert.Equal(t, "30.00", rows[0].PurchasePrice)
	assert.Empty(t, rows[0].ExternalProductID)
}

func TestSetDraftFieldConditionSwitchRederivesListingData(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(500),
		ExternalProductID: "w-new", ForWeb: true,
	})
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionUsed, PurchasePrice: decimal.NewFromInt(300),
		ExternalProductID: "w-used", ForWeb: true,
	})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")

	row, err := svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "condition", Value: model.ConditionUsed})
	require.NoError(t, err)
	assert.Equal(t, "w-used", row.ExternalProductID)
	assert.Equal(t, "300.00", row.PurchasePrice)

	// Switching to a condition with no devices clears the listing data.
	seedOnly := &fakeDeviceRepo{}
	seedDevice(t, seedOnly, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, ExternalProductID: "w-new", ForWeb: true,
		PurchasePrice: decimal.NewFromInt(500),
	})
	svc2 := newTemplateServiceForTest(seedOnly)
	row, err = svc2.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "condition", Value: model.ConditionUsed})
	require.NoError(t, err)
	assert.Empty(t, row.ExternalProductID)
	assert.Equal(t, "0.00", row.PurchasePrice)
	assert.False(t, row.ForWeb)
}

func TestRefreshDoesNotClobberUserEdits(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(500),
		ExternalProductID: "w-17", ForWeb: true,
	})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")

	_, err := svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "purchase_price", Value: "450"})
	require.NoError(t, err)

	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "450.00", rows[0].PurchasePrice)
}

func TestDraftsForVanishedGroupsArePruned(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128"})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")
	_, err := svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "imei", Value: "356"})
	require.NoError(t, err)

	// Last device of the group disappears, and with it the draft.
	devices, _ := repo.ListAll(context.Background())
	require.NoError(t, repo.Delete(context.Background(), devices[0].ID))

	_, err = svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "imei", Value: "357"})
	assert.Error(t, err)
}

func TestCommitTemplateRequiresIMEI(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128"})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")

	_, err := svc.CommitTemplate(context.Background(), key)
	assert.ErrorContains(t, err, "IMEI")
}

func TestCommitTemplateCreatesDeviceAndResetsDraft(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(500),
		ExternalProductID: "w-17", ForWeb: true,
	})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")

	_, err := svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: "imei", Value: "356000000000001"})
	require.NoError(t, err)

	device, err := svc.CommitTemplate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "OTK-000001", device.OrderNumber)
	assert.Equal(t, "356000000000001", device.IMEI)
	assert.Equal(t, "w-17", device.ExternalProductID)
	assert.Equal(t, model.StatusInStock, device.Status)

	devices, _ := repo.ListAll(context.Background())
	assert.Len(t, devices, 2)

	// The draft is ready for the next unit: IMEI gone, listing data back.
	rows, err := svc.ListTemplates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].IMEI)
	assert.Equal(t, "w-17", rows[0].ExternalProductID)
}

func TestCommitTemplateWithSalePriceStaysInStock(t *testing.T) {
	repo := &fakeDeviceRepo{}
	seedDevice(t, repo, model.Device{
		Brand: "Apple", Model: "iPhone 13", Color: "Black", StorageGB: "128",
		Condition: model.ConditionNew, PurchasePrice: decimal.NewFromInt(500),
	})

	svc := newTemplateServiceForTest(repo)
	key := templateKey("Apple", "iPhone 13", "Black", "128")

	for field, value := range map[string]string{
		"imei":              "356000000000002",
		"actual_sale_price": "650",
		"sold_by":           "Ana",
	} {
		_, err := svc.SetDraftField(context.Background(), DraftUpdateRequest{Key: key, Field: field, Value: value})
		require.NoError(t, err)
	}

	// A drafted sale price never sells the unit at commit: the device enters
	// stock carrying the price and margins, and the sale is a later status
	// transition.
	device, err := svc.CommitTemplate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInStock, device.Status)
	assert.Empty(t, device.SoldBy)
	assert.Equal(t, "650.00", device.ActualSalePrice)
	assert.Equal(t, "150.00", device.MarginAmount)
}
