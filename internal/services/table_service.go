package services

import (
	"errors"
	"fmt"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/repositories"
)

// TableService covers floor operations that are not order transitions:
// listing the floor plan and relaying call-staff pushes from a table.
type TableService interface {
	ListTables(restaurantID int64) ([]models.Table, error)
	CallStaff(tableID int64, message string) error
	CallForPayment(tableID int64) error
}

type tableService struct {
	tableRepo repositories.TableRepository
	staffRepo repositories.StaffRepository
	notifier  NotificationSender
}

// NewTableService creates a new instance of TableService.
func NewTableService(tr repositories.TableRepository, sr repositories.StaffRepository, notifier NotificationSender) TableService {
	return &tableService{tableRepo: tr, staffRepo: sr, notifier: notifier}
}

func (s *tableService) ListTables(restaurantID int64) ([]models.Table, error) {
	tables, err := s.tableRepo.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *tableService) CallStaff(tableID int64, message string) error {
	return s.callFromTable(tableID, EventCallStaff, message)
}

func (s *tableService) CallForPayment(tableID int64) error {
	return s.callFromTable(tableID, EventCallStaffForPayment, "")
}

// callFromTable fans a push out to every registered staff device of the
// table's restaurant. Unlike order notifications this one is the whole
// operation, so a delivery failure surfaces to the caller.
func (s *tableService) callFromTable(tableID int64, event NotificationEvent, message string) error {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("failed to fetch table: %w", err)
	}

	tokens, err := s.staffRepo.GetDeviceTokens(table.RestaurantID)
	if err != nil {
		return fmt.Errorf("failed to load staff device tokens: %w", err)
	}

	params := NotificationParams{Message: message}
	if table.TableNo != nil {
		params.TableNo = *table.TableNo
	}
	if err := s.notifier.Send(event, tokens, params); err != nil {
		return fmt.Errorf("failed to deliver staff call: %w", err)
	}
	return nil
}
