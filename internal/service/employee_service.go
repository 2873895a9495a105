package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateEmployeeRequest struct {
	Name string `json:"name" binding:"required"`
}

type EmployeeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type employeeService struct {
	employees repository.EmployeeRepository
	devices   repository.DeviceRepository
	notifier  ChangeNotifier
}

func NewEmployeeService(employees repository.EmployeeRepository, devices repository.DeviceRepository, notifier ChangeNotifier) EmployeeService {
	return &employeeService{employees: employees, devices: devices, notifier: notifier}
}

func mapEmployeeToResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID.String(),
		Name:      e.Name,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func (s *employeeService) ListEmployees(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		res = append(res, mapEmployeeToResponse(&employees[i]))
	}
	return res, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("employee name cannot be empty")
	}

	employee := &model.Employee{Name: name}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyChanged("employees")
	}
	res := mapEmployeeToResponse(employee)
	return &res, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid employee id: %w", err)
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("employee not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Devices reference employees by name, so a referenced name must keep
	// its employee record.
	count, err := s.devices.CountReferencingEmployee(ctx, employee.Name)
	if err != nil {
		return fmt.Errorf("failed to check employee references: %w", err)
	}
	if count > 0 {
		return errors.New("employee is referenced by existing devices")
	}

	if err := s.employees.Delete(ctx, employeeID); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyChanged("employees")
	}
	return nil
}
