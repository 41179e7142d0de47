package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Provision a user account, optionally with a first company",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		company, _ := cmd.Flags().GetString("company")
		industry, _ := cmd.Flags().GetString("industry")
		if email == "" || password == "" || name == "" {
			return fmt.Errorf("email, password and name are required")
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		env, closeEnv, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv()

		users := postgres.NewUserRepository(env.db.GORM(), env.log)
		companies := postgres.NewCompanyRepository(env.db.GORM(), env.log)
		tokens := crypto.NewTokenManager(&env.cfg.JWT, env.log)
		auth := service.NewAuthService(users, companies, tokens, env.log)

		resp, err := auth.Register(cmd.Context(), &dto.RegisterRequest{
			Email:       email,
			Password:    password,
			FullName:    name,
			CompanyName: company,
			Industry:    industry,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created user %s (%s)\n", resp.User.Email, resp.User.ID)
		if resp.User.DefaultCompanyID != nil {
			fmt.Printf("Created company %q (%s)\n", company, *resp.User.DefaultCompanyID)
		}
		return nil
	},
}

func init() {
	createUserCmd.Flags().String("email", "", "Login email")
	createUserCmd.Flags().String("password", "", "Initial password")
	createUserCmd.Flags().String("name", "", "Full name")
	createUserCmd.Flags().String("company", "", "Optional first company name")
	createUserCmd.Flags().String("industry", "", "Industry of the first company")
	rootCmd.AddCommand(createUserCmd)
}
