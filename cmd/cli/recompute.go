package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
)

var recomputeKinds = []models.SummaryKind{
	models.SummaryHealth,
	models.SummaryCredit,
	models.SummaryRisk,
	models.SummaryForecast,
	models.SummaryBenchmark,
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute the stored analytics summaries for a company",
	Long: `Recomputes the persisted summary documents from the company's
monthly rows and refreshes the cache. Use after seeding benchmarks or
fixing data by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		companyID, _ := cmd.Flags().GetString("company")
		only, _ := cmd.Flags().GetString("kind")
		if _, err := uuid.Parse(companyID); err != nil {
			return fmt.Errorf("--company must be a company UUID")
		}

		env, closeEnv, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv()

		redisConn, err := redis.NewConnection(cmd.Context(), &env.cfg.Redis, env.log)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisConn.Close()

		financials := postgres.NewFinancialRepository(env.db.GORM(), env.log)
		summaries := postgres.NewSummaryRepository(env.db.GORM(), env.log)
		benchmarks := postgres.NewBenchmarkRepository(env.db.GORM(), env.log)
		companies := postgres.NewCompanyRepository(env.db.GORM(), env.log)
		cache := redis.NewSummaryCache(redisConn, env.log)
		analytics := service.NewAnalyticsService(
			financials, summaries, benchmarks, companies,
			cache, monitoring.NewMetrics(), env.log,
		)

		for _, kind := range recomputeKinds {
			if only != "" && string(kind) != only {
				continue
			}
			if _, err := analytics.Recompute(cmd.Context(), companyID, kind); err != nil {
				return fmt.Errorf("recompute %s: %w", kind, err)
			}
			fmt.Printf("Recomputed %s\n", kind)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().String("company", "", "Company UUID")
	recomputeCmd.Flags().String("kind", "", "Recompute only this kind (health, credit, risk, forecast, benchmark)")
	_ = recomputeCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(recomputeCmd)
}
