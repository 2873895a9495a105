package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"otkup-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices []model.Device
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	now := time.Now()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	if device.UpdatedAt.IsZero() {
		device.UpdatedAt = now
	}
	r.devices = append(r.devices, *device)
	return nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, device *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		if r.devices[i].ID == device.ID {
			device.UpdatedAt = time.Now()
			r.devices[i] = *device
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		if r.devices[i].ID != id {
			continue
		}
		d := &r.devices[i]
		for name, value := range fields {
			switch name {
			case "status":
				d.Status = value.(string)
			case "sold_by":
				d.SoldBy = value.(string)
			case "actual_sale_price":
				d.ActualSalePrice = value.(decimal.Decimal)
			case "margin_amount":
				d.MarginAmount = value.(decimal.Decimal)
			case "margin_percent":
				d.MarginPercent = value.(decimal.Decimal)
			default:
				return fmt.Errorf("fake repo: unhandled field %q", name)
			}
		}
		d.UpdatedAt = time.Now()
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		if r.devices[i].ID == id {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		if r.devices[i].ID == id {
			d := r.devices[i]
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) ListAll(_ context.Context) ([]model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Device, len(r.devices))
	copy(out, r.devices)
	return out, nil
}

func (r *fakeDeviceRepo) CountReferencingEmployee(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for i := range r.devices {
		d := &r.devices[i]
		if d.PurchasedBy == name || d.TestedBy == name || d.SoldBy == name {
			count++
		}
	}
	return count, nil
}

type fakeSequenceRepo struct {
	mu sync.Mutex
	n  int64
}

func (r *fakeSequenceRepo) Next(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return r.n, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu          sync.Mutex
	collections []string
}

func (n *fakeNotifier) NotifyChanged(collection string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.collections = append(n.collections, collection)
}

func (n *fakeNotifier) count(collection string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, got := range n.collections {
		if got == collection {
			c++
		}
	}
	return c
}

type fakeSyncTrigger struct {
	calls   int
	message string
	err     error
}

func (s *fakeSyncTrigger) Sync(context.Context) (string, error) {
	s.calls++
	return s.message, s.err
}

type fakeEmployeeRepo struct {
	employees []model.Employee
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	employee.CreatedAt = time.Now()
	r.employees = append(r.employees, *employee)
	return nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.employees {
		if r.employees[i].ID == id {
			r.employees = append(r.employees[:i], r.employees[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	for i := range r.employees {
		if r.employees[i].ID == id {
			e := r.employees[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) ListAll(context.Context) ([]model.Employee, error) {
	out := make([]model.Employee, len(r.employees))
	copy(out, r.employees)
	return out, nil
}

type fakeSettingsRepo struct {
	receipt    *model.ReceiptSettings
	company    *model.CompanyProfile
	storefront *model.StorefrontCredentials
}

func (r *fakeSettingsRepo) GetReceipt(context.Context) (*model.ReceiptSettings, error) {
	if r.receipt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.receipt, nil
}

func (r *fakeSettingsRepo) SaveReceipt(_ context.Context, settings *model.ReceiptSettings) error {
	r.receipt = settings
	return nil
}

func (r *fakeSettingsRepo) GetCompany(context.Context) (*model.CompanyProfile, error) {
	if r.company == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.company, nil
}

func (r *fakeSettingsRepo) SaveCompany(_ context.Context, profile *model.CompanyProfile) error {
	r.company = profile
	return nil
}

func (r *fakeSettingsRepo) GetStorefront(context.Context) (*model.StorefrontCredentials, error) {
	if r.storefront == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.storefront, nil
}

func (r *fakeSettingsRepo) SaveStorefront(_ context.Context, creds *model.StorefrontCredentials) error {
	r.storefront = creds
	return nil
}

type fakeUserRepo struct {
	users []model.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
