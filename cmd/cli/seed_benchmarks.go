package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/finhealth/finhealth/internal/domain/models"
	domainservice "github.com/finhealth/finhealth/internal/domain/service"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/pkg/constants"
)

var seedIndustries = []constants.Industry{
	constants.IndustryRetail,
	constants.IndustryManufacturing,
	constants.IndustryServices,
	constants.IndustryTechnology,
	constants.IndustryGeneral,
}

var seedBenchmarksCmd = &cobra.Command{
	Use:   "seed-benchmarks",
	Short: "Persist the built-in industry benchmark tables",
	Long: `Writes the built-in quartile benchmark bands into the
industry_benchmarks table so operators can review and tune them with
SQL. Existing rows for the same industry and metric are overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		only, _ := cmd.Flags().GetString("industry")

		env, closeEnv, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv()

		repo := postgres.NewBenchmarkRepository(env.db.GORM(), env.log)
		seeded := 0
		for _, industry := range seedIndustries {
			if only != "" && string(industry) != only {
				continue
			}
			bands := domainservice.DefaultBenchmarks(industry)
			metrics := make([]string, 0, len(bands))
			for metric := range bands {
				metrics = append(metrics, metric)
			}
			sort.Strings(metrics)

			for _, metric := range metrics {
				band := bands[metric]
				row := &models.IndustryBenchmark{
					Industry:       industry,
					Metric:         metric,
					IndustryAvg:    band.IndustryAvg,
					TopQuartile:    band.TopQuartile,
					BottomQuartile: band.BottomQuartile,
				}
				if err := repo.Upsert(cmd.Context(), row); err != nil {
					return fmt.Errorf("seed %s/%s: %w", industry, metric, err)
				}
				seeded++
			}
		}

		if seeded == 0 {
			return fmt.Errorf("no benchmarks matched industry %q", only)
		}
		fmt.Printf("Seeded %d benchmark rows\n", seeded)
		return nil
	},
}

func init() {
	seedBenchmarksCmd.Flags().String("industry", "", "Seed only this industry (e.g. Retail)")
	rootCmd.AddCommand(seedBenchmarksCmd)
}
