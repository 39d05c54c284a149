package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm/clause"

	"maidmarket/internal/config"
	"maidmarket/internal/database"
	"maidmarket/internal/domain/maid"
	jwtsvc "maidmarket/internal/pkg/jwt"
	"maidmarket/internal/pkg/logger"
)

func main() {
	var (
		userID int64
		role   string
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo maids and print a bearer token",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			seed(userID, role, reset)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 1, "user id to mint a token for")
	cmd.Flags().StringVar(&role, "role", jwtsvc.RoleCustomer, "role of the minted token (customer, office, admin)")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing maids and favorites first")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(userID int64, role string, reset bool) {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init("maidmarket-seed", true)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("migration failed")
	}

	if reset {
		logger.Logger.Info().Msg("cleaning old data")
		db.Exec("DELETE FROM favorites")
		db.Exec("DELETE FROM cv_unlocks")
		db.Exec("DELETE FROM maids")
	}

	maids := []maid.Maid{
		{ID: "7c1f4a52-0d8e-4a8b-9a44-0f4c1b7e2a01", Name: "Maria Santos", Nationality: "Philippines", Age: 34, ExperienceYears: 8,
			Religion: "Christian", Languages: []string{"English", "Tagalog"}, Skills: []string{"cooking", "childcare"},
			MonthlySalary: 1800, Available: true, Phone: "+639171234567", PassportNumber: "P4455667", CVURL: "https://cdn.maidmarket.local/cv/maria.pdf"},
		{ID: "7c1f4a52-0d8e-4a8b-9a44-0f4c1b7e2a02", Name: "Siti Aminah", Nationality: "Indonesia", Age: 29, ExperienceYears: 5,
			Religion: "Muslim", Languages: []string{"Bahasa", "Arabic"}, Skills: []string{"cleaning", "elderly care"},
			MonthlySalary: 1500, Available: true, Phone: "+628123456789", PassportNumber: "B7788990", CVURL: "https://cdn.maidmarket.local/cv/siti.pdf"},
		{ID: "7c1f4a52-0d8e-4a8b-9a44-0f4c1b7e2a03", Name: "Grace Wanjiru", Nationality: "Kenya", Age: 31, ExperienceYears: 6,
			Religion: "Christian", Languages: []string{"English", "Swahili"}, Skills: []string{"cooking", "laundry"},
			MonthlySalary: 1400, Available: true, Phone: "+254712345678", PassportNumber: "AK123456", CVURL: "https://cdn.maidmarket.local/cv/grace.pdf"},
		{ID: "7c1f4a52-0d8e-4a8b-9a44-0f4c1b7e2a04", Name: "Kamala Perera", Nationality: "Sri Lanka", Age: 42, ExperienceYears: 15,
			Religion: "Buddhist", Languages: []string{"Sinhala", "English", "Arabic"}, Skills: []string{"childcare", "cooking"},
			MonthlySalary: 2000, Available: false, Phone: "+94771234567", PassportNumber: "N5566778", CVURL: "https://cdn.maidmarket.local/cv/kamala.pdf"},
		{ID: "7c1f4a52-0d8e-4a8b-9a44-0f4c1b7e2a05", Name: "Tigist Alemu", Nationality: "Ethiopia", Age: 26, ExperienceYears: 3,
			Religion: "Christian", Languages: []string{"Amharic", "Arabic"}, Skills: []string{"cleaning"},
			MonthlySalary: 1200, Available: true, Phone: "+251911234567", PassportNumber: "EP998877", CVURL: "https://cdn.maidmarket.local/cv/tigist.pdf"},
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&maids)
	if res.Error != nil {
		logger.Logger.Fatal().Err(res.Error).Msg("seeding maids failed")
	}
	logger.Logger.Info().Int64("inserted", res.RowsAffected).Int("total", len(maids)).Msg("maids seeded")

	token, err := jwtsvc.New(cfg.JWTSecret, 30*24*time.Hour).GenerateToken(userID, role)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("token generation failed")
	}

	fmt.Fprintf(os.Stdout, "MAIDCTL_TOKEN=%s\n", token)
}
