package service

import (
	"context"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/pkg/logger"
)

// ReportService reads the versioned report snapshots taken on upload.
type ReportService struct {
	reports repository.ReportRepository
	logger  logger.Logger
}

// NewReportService wires the report service.
func NewReportService(reports repository.ReportRepository, log logger.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		logger:  log.WithComponent("ReportService"),
	}
}

// List returns report snapshots, newest version first.
func (s *ReportService) List(ctx context.Context, companyID string, page *dto.PageQuery) (*dto.ReportListPage, error) {
	page.Normalize()
	reports, total, err := s.reports.List(ctx, companyID, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.ReportListPage{
		Reports:    reports,
		Pagination: dto.NewPagination(page.Page, page.PageSize, total),
	}, nil
}

// Get returns one report snapshot by ID.
func (s *ReportService) Get(ctx context.Context, companyID, reportID string) (*models.Report, error) {
	return s.reports.FindByID(ctx, companyID, reportID)
}
