package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService exposes the read-side aggregates and their xlsx export.
type ReportService struct {
	repo *repository.ReportRepository
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// TopSpenders returns customers ordered by total spent on priced tickets.
func (s *ReportService) TopSpenders(ctx context.Context) ([]repository.TopSpender, error) {
	return s.repo.TopSpenders(ctx)
}

// TopMechanics returns mechanics ordered by assigned-ticket count.
func (s *ReportService) TopMechanics(ctx context.Context) ([]repository.TopMechanic, error) {
	return s.repo.TopMechanics(ctx)
}

// Export renders both aggregates into an xlsx workbook, one sheet each.
// Manager only.
func (s *ReportService) Export(ctx context.Context, caller Principal) (*bytes.Buffer, error) {
	if err := require(ActionExportReports, caller); err != nil {
		return nil, err
	}

	spenders, err := s.repo.TopSpenders(ctx)
	if err != nil {
		return nil, fmt.Errorf("top spenders: %w", err)
	}
	mechanics, err := s.repo.TopMechanics(ctx)
	if err != nil {
		return nil, fmt.Errorf("top mechanics: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	spenderSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(spenderSheet, "Top Spenders"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	spenderSheet = "Top Spenders"

	header := []interface{}{"customer_id", "first_name", "last_name", "email", "total"}
	if err := f.SetSheetRow(spenderSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, sp := range spenders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := []interface{}{sp.CustomerID, sp.FirstName, sp.LastName, sp.Email, sp.Total}
		if err := f.SetSheetRow(spenderSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	mechSheet := "Top Mechanics"
	if _, err := f.NewSheet(mechSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	header = []interface{}{"mechanic_id", "first_name", "last_name", "email", "ticket_count"}
	if err := f.SetSheetRow(mechSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, m := range mechanics {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := []interface{}{m.MechanicID, m.FirstName, m.LastName, m.Email, m.TicketCount}
		if err := f.SetSheetRow(mechSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
