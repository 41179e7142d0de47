package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	domainservice "github.com/finhealth/finhealth/internal/domain/service"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// summaryKinds lists every document recomputed after an upload.
var summaryKinds = []models.SummaryKind{
	models.SummaryHealth,
	models.SummaryCredit,
	models.SummaryRisk,
	models.SummaryForecast,
	models.SummaryBenchmark,
}

// StatementService runs the upload pipeline: parse the statement,
// persist raw rows and monthly summaries, recompute every analytics
// document, snapshot a report version and record the upload.
type StatementService struct {
	financials repository.FinancialRepository
	summaries  repository.SummaryRepository
	reports    repository.ReportRepository
	analytics  *AnalyticsService
	parser     *domainservice.StatementParser
	cache      redis.SummaryCache
	recorder   audit.Recorder
	metrics    *monitoring.Metrics
	logger     logger.Logger
}

// NewStatementService wires the statement service.
func NewStatementService(
	financials repository.FinancialRepository,
	summaries repository.SummaryRepository,
	reports repository.ReportRepository,
	analytics *AnalyticsService,
	cache redis.SummaryCache,
	recorder audit.Recorder,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *StatementService {
	return &StatementService{
		financials: financials,
		summaries:  summaries,
		reports:    reports,
		analytics:  analytics,
		parser:     domainservice.NewStatementParser(),
		cache:      cache,
		recorder:   recorder,
		metrics:    metrics,
		logger:     log.WithComponent("StatementService"),
	}
}

// Upload ingests one CSV statement for the company. Re-uploads of a
// byte-identical file short-circuit with the stored document.
func (s *StatementService) Upload(ctx context.Context, companyID, userID, filename string, r io.Reader) (*dto.UploadResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, constants.MaxUploadBytes+1))
	if err != nil {
		return nil, apperrors.ErrInvalidRequest.WithError(err).WithDescription("failed to read upload body")
	}
	if len(data) > constants.MaxUploadBytes {
		return nil, apperrors.ErrInvalidRequest.WithDescription("file exceeds the %d byte upload limit", constants.MaxUploadBytes)
	}
	if len(data) == 0 {
		return nil, apperrors.ErrInvalidRequest.WithDescription("uploaded file is empty")
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	existing, err := s.financials.FindDocumentByChecksum(ctx, companyID, checksum)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info(ctx, "Duplicate upload detected",
			logger.String("company_id", companyID),
			logger.String("document_id", existing.ID),
		)
		return &dto.UploadResponse{
			DocumentID: existing.ID,
			Format:     existing.Format,
			RowsRead:   existing.RowsRead,
			Duplicate:  true,
		}, nil
	}

	doc := &models.UploadedDocument{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		UploaderID: userID,
		Filename:   filename,
		SHA256:     checksum,
		SizeBytes:  int64(len(data)),
	}

	parsed, err := s.parser.Parse(bytes.NewReader(data), companyID)
	if err != nil {
		doc.Status = constants.UploadStatusFailed
		doc.Error = apperrors.AsAppError(err).Description
		if saveErr := s.financials.SaveDocument(ctx, doc); saveErr != nil {
			s.logger.Error(ctx, "Failed to record rejected upload", saveErr,
				logger.String("company_id", companyID),
			)
		}
		s.metrics.RecordUpload("unknown", "rejected", 0)
		return nil, err
	}

	docID := doc.ID
	rawRows := make([]*models.FinancialData, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		rawRows = append(rawRows, rawRowFrom(row, docID))
		if err := s.financials.UpsertMonthlySummary(ctx, row); err != nil {
			return nil, err
		}
	}
	if err := s.financials.SaveRows(ctx, rawRows); err != nil {
		return nil, err
	}

	doc.Format = parsed.Format
	doc.RowsRead = parsed.RowsRead
	doc.RowsStored = len(parsed.Rows)
	doc.Status = constants.UploadStatusProcessed
	if err := s.financials.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	documents, err := s.recomputeAll(ctx, companyID)
	if err != nil {
		return nil, err
	}

	reportID, err := s.snapshotReport(ctx, companyID, parsed.LatestMonth(), documents)
	if err != nil {
		s.logger.Error(ctx, "Failed to snapshot report", err,
			logger.String("company_id", companyID),
		)
	}

	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:     userID,
		CompanyID:  companyID,
		Action:     "statement_uploaded",
		Resource:   "document",
		ResourceID: doc.ID,
		NewValues: models.MustJSON(map[string]interface{}{
			"filename":  filename,
			"format":    parsed.Format,
			"rows_read": parsed.RowsRead,
			"sha256":    checksum,
		}),
	})
	s.metrics.RecordUpload(string(parsed.Format), "accepted", parsed.RowsRead)

	resp := &dto.UploadResponse{
		DocumentID:     doc.ID,
		Format:         parsed.Format,
		RowsRead:       parsed.RowsRead,
		MonthsAffected: len(parsed.Rows),
		LatestMonth:    parsed.LatestMonth(),
		Warnings:       parsed.Warnings,
		ReportID:       reportID,
	}
	if health, ok := documents[models.SummaryHealth]; ok {
		var headline struct {
			Score    float64                  `json:"health_score"`
			Category constants.HealthCategory `json:"health_category"`
		}
		if err := json.Unmarshal(health, &headline); err == nil {
			resp.HealthScore = headline.Score
			resp.HealthCategory = headline.Category
		}
	}
	return resp, nil
}

// ListData returns the stored months, newest first.
func (s *StatementService) ListData(ctx context.Context, companyID string, page *dto.PageQuery) (*dto.MonthlyDataPage, error) {
	page.Normalize()
	months, total, err := s.financials.ListMonthlySummariesPage(ctx, companyID, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.MonthlyDataPage{
		Months:     months,
		Pagination: dto.NewPagination(page.Page, page.PageSize, total),
	}, nil
}

// DeleteData wipes every financial row, summary and cached document
// for the company. Owners and admins only.
func (s *StatementService) DeleteData(ctx context.Context, companyID, userID string, role constants.Role) error {
	if !role.CanManage() {
		return apperrors.ErrForbidden.WithDescription("only owners and admins can delete company data")
	}
	if err := s.financials.DeleteCompanyData(ctx, companyID); err != nil {
		return err
	}
	if err := s.summaries.DeleteForCompany(ctx, companyID); err != nil {
		return err
	}
	if err := s.cache.InvalidateCompany(ctx, companyID); err != nil {
		s.logger.Warn(ctx, "Failed to invalidate summary cache",
			logger.String("company_id", companyID),
			logger.String("error", err.Error()),
		)
	}
	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:    userID,
		CompanyID: companyID,
		Action:    "company_data_deleted",
		Resource:  "financial_data",
	})
	return nil
}

// recomputeAll rebuilds every summary document concurrently.
func (s *StatementService) recomputeAll(ctx context.Context, companyID string) (map[models.SummaryKind]json.RawMessage, error) {
	documents := make(map[models.SummaryKind]json.RawMessage, len(summaryKinds))
	results := make([]json.RawMessage, len(summaryKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range summaryKinds {
		i, kind := i, kind
		g.Go(func() error {
			payload, err := s.analytics.Recompute(gctx, companyID, kind)
			if err != nil {
				return err
			}
			results[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, kind := range summaryKinds {
		documents[kind] = results[i]
	}
	return documents, nil
}

// snapshotReport stores a versioned snapshot of every analytics
// document as of this upload.
func (s *StatementService) snapshotReport(ctx context.Context, companyID, latestMonth string, documents map[models.SummaryKind]json.RawMessage) (string, error) {
	version, err := s.reports.NextVersion(ctx, companyID)
	if err != nil {
		return "", err
	}

	sections := make(map[string]json.RawMessage, len(documents))
	for kind, payload := range documents {
		sections[string(kind)] = payload
	}
	payload, err := json.Marshal(sections)
	if err != nil {
		return "", apperrors.ErrInternal.WithError(err)
	}

	report := &models.Report{
		CompanyID: companyID,
		Type:      "upload_snapshot",
		Version:   version,
		Title:     fmt.Sprintf("Financial report v%d (%s)", version, latestMonth),
		Payload:   models.JSON(payload),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return "", err
	}
	return report.ID, nil
}

// rawRowFrom copies a parsed month into its raw statement row,
// attributed to the source document.
func rawRowFrom(row *models.MonthlySummary, documentID string) *models.FinancialData {
	return &models.FinancialData{
		CompanyID:          row.CompanyID,
		Month:              row.Month,
		Revenue:            row.Revenue,
		Expenses:           row.Expenses,
		COGS:               row.COGS,
		NetIncome:          row.NetIncome,
		CashBalance:        row.CashBalance,
		Receivables:        row.Receivables,
		Payables:           row.Payables,
		Inventory:          row.Inventory,
		TotalAssets:        row.TotalAssets,
		TotalLiabilities:   row.TotalLiabilities,
		Equity:             row.Equity,
		CurrentAssets:      row.CurrentAssets,
		CurrentLiabilities: row.CurrentLiabilities,
		OperatingCashFlow:  row.OperatingCashFlow,
		InterestExpense:    row.InterestExpense,
		DebtToEquity:       row.DebtToEquity,
		DocumentID:         &documentID,
		CreatedAt:          time.Now().UTC(),
	}
}
