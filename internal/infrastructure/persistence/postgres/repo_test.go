package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(context.Background(), db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestUserRepoCreateAndFind(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db, logger.NewNop())
	ctx := context.Background()

	user := &models.User{Email: "owner@acme.in", PasswordHash: "x", FullName: "Owner"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	found, err := repo.FindByEmail(ctx, "owner@acme.in")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, constants.ErrCodeNotFound, appErr.Code)
}

func TestUserRepoRejectsDuplicateEmail(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "dup@acme.in", PasswordHash: "x"}))
	err := repo.Create(ctx, &models.User{Email: "dup@acme.in", PasswordHash: "y"})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, constants.ErrCodeConflict, appErr.Code)
}

func TestCompanyRepoMembership(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db, logger.NewNop())
	companies := NewCompanyRepository(db, logger.NewNop())
	ctx := context.Background()

	user := &models.User{Email: "fm@acme.in", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	company := &models.Company{Name: "Acme Traders", Industry: "Retail"}
	require.NoError(t, companies.Create(ctx, company))

	require.NoError(t, companies.AddMember(ctx, &models.UserCompany{
		UserID:    user.ID,
		CompanyID: company.ID,
		Role:      constants.RoleOwner,
	}))

	membership, err := companies.FindMembership(ctx, user.ID, company.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleOwner, membership.Role)

	listed, err := companies.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Acme Traders", listed[0].Name)

	_, err = companies.FindMembership(ctx, user.ID, "11111111-1111-1111-1111-111111111111")
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeForbidden, apperrors.AsAppError(err).Code)
}

func TestFinancialRepoUpsertMonthlySummary(t *testing.T) {
	db := setupDB(t)
	repo := NewFinancialRepository(db, logger.NewNop())
	ctx := context.Background()
	companyID := "33333333-3333-3333-3333-333333333333"

	first := &models.MonthlySummary{CompanyID: companyID, Month: "2024-01"}
	require.NoError(t, repo.UpsertMonthlySummary(ctx, first))

	// Same month again replaces, not duplicates.
	second := &models.MonthlySummary{CompanyID: companyID, Month: "2024-01"}
	require.NoError(t, repo.UpsertMonthlySummary(ctx, second))
	require.NoError(t, repo.UpsertMonthlySummary(ctx, &models.MonthlySummary{CompanyID: companyID, Month: "2024-02"}))

	rows, err := repo.ListMonthlySummaries(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, "2024-02", rows[1].Month)

	page, total, err := repo.ListMonthlySummariesPage(ctx, companyID, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "2024-02", page[0].Month)
}

func TestFinancialRepoDocumentChecksum(t *testing.T) {
	db := setupDB(t)
	repo := NewFinancialRepository(db, logger.NewNop())
	ctx := context.Background()
	companyID := "44444444-4444-4444-4444-444444444444"

	missing, err := repo.FindDocumentByChecksum(ctx, companyID, "deadbeef")
	require.NoError(t, err)
	assert.Nil(t, missing)

	doc := &models.UploadedDocument{
		CompanyID:  companyID,
		UploaderID: "55555555-5555-5555-5555-555555555555",
		Filename:   "jan.csv",
		SHA256:     "deadbeef",
		Status:     constants.UploadStatusProcessed,
	}
	require.NoError(t, repo.SaveDocument(ctx, doc))

	found, err := repo.FindDocumentByChecksum(ctx, companyID, "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "jan.csv", found.Filename)
}

func TestSummaryRepoUpsertAndFind(t *testing.T) {
	db := setupDB(t)
	repo := NewSummaryRepository(db, logger.NewNop())
	ctx := context.Background()
	companyID := "66666666-6666-6666-6666-666666666666"

	_, err := repo.Find(ctx, companyID, models.SummaryHealth)
	require.Error(t, err)

	require.NoError(t, repo.Upsert(ctx, &models.ComputedSummary{
		CompanyID: companyID,
		Kind:      models.SummaryHealth,
		Payload:   models.JSON(`{"health_score":72}`),
	}))
	require.NoError(t, repo.Upsert(ctx, &models.ComputedSummary{
		CompanyID: companyID,
		Kind:      models.SummaryHealth,
		Payload:   models.JSON(`{"health_score":75}`),
	}))

	found, err := repo.Find(ctx, companyID, models.SummaryHealth)
	require.NoError(t, err)
	assert.JSONEq(t, `{"health_score":75}`, string(found.Payload))

	require.NoError(t, repo.DeleteForCompany(ctx, companyID))
	_, err = repo.Find(ctx, companyID, models.SummaryHealth)
	require.Error(t, err)
}

func TestReportRepoVersioning(t *testing.T) {
	db := setupDB(t)
	repo := NewReportRepository(db, logger.NewNop())
	ctx := context.Background()
	companyID := "77777777-7777-7777-7777-777777777777"

	v, err := repo.NextVersion(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, repo.Create(ctx, &models.Report{
		CompanyID: companyID,
		Type:      "Full Report",
		Version:   v,
		Payload:   models.JSON(`{}`),
	}))

	v, err = repo.NextVersion(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	reports, total, err := repo.List(ctx, companyID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reports, 1)
}

func TestBenchmarkRepoUpsert(t *testing.T) {
	db := setupDB(t)
	repo := NewBenchmarkRepository(db, logger.NewNop())
	ctx := context.Background()

	row := &models.IndustryBenchmark{
		Industry:       constants.IndustryRetail,
		Metric:         "net_profit_margin",
		IndustryAvg:    0.03,
		TopQuartile:    0.06,
		BottomQuartile: 0.01,
	}
	require.NoError(t, repo.Upsert(ctx, row))

	row.IndustryAvg = 0.04
	row.ID = ""
	require.NoError(t, repo.Upsert(ctx, row))

	rows, err := repo.ListForIndustry(ctx, constants.IndustryRetail)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.04, rows[0].IndustryAvg)
}

func TestAuditRepoSaveAndList(t *testing.T) {
	db := setupDB(t)
	repo := NewAuditRepository(db, logger.NewNop())
	ctx := context.Background()
	companyID := "88888888-8888-8888-8888-888888888888"

	require.NoError(t, repo.Save(ctx, &models.AuditEvent{
		CompanyID: companyID,
		Action:    "statement_uploaded",
		Resource:  "uploaded_document",
	}))
	require.NoError(t, repo.SaveBatch(ctx, []*models.AuditEvent{
		{CompanyID: companyID, Action: "report_generated", Resource: "report"},
		{CompanyID: companyID, Action: "summary_recomputed", Resource: "computed_summary"},
	}))

	events, total, err := repo.List(ctx, companyID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, events, 3)
}
