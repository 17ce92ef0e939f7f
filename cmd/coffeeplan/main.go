package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/beanfleet/coffeeplan/internal/adapters/httpapi"
	"github.com/beanfleet/coffeeplan/internal/adapters/persistence"
	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/commands"
	"github.com/beanfleet/coffeeplan/internal/application/planning/queries"
	"github.com/beanfleet/coffeeplan/internal/application/planning/services"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
	"github.com/beanfleet/coffeeplan/internal/infrastructure/config"
	"github.com/beanfleet/coffeeplan/internal/infrastructure/database"
	"github.com/beanfleet/coffeeplan/internal/infrastructure/logging"
	"github.com/beanfleet/coffeeplan/internal/solver"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "coffeeplan",
		Short: "Coffee procurement planner for office networks",
		Long: `coffeeplan plans coffee purchases across offices and distributors by
solving a mixed-integer optimization over demand forecasts, volume tariffs,
lead times and storage constraints.

Examples:
  coffeeplan serve
  coffeeplan seed
  coffeeplan migrate`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the planning HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)

			logger, err := logging.New(&cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			handler, err := buildHandler(cfg, db)
			if err != nil {
				return err
			}
			server := httpapi.NewServer(&cfg.Server, handler, logger)

			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", server.Addr())
				errCh <- server.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Printf("received %s, shutting down", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			log.Println("schema up to date")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo offices, distributors and system parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			return seed(cmd.Context(), cfg, db)
		},
	}
}

// buildHandler wires repositories, services and the mediator.
func buildHandler(cfg *config.Config, db *gorm.DB) (*httpapi.Handler, error) {
	officeRepo := persistence.NewGormOfficeRepository(db)
	distributorRepo := persistence.NewGormDistributorRepository(db)
	planRepo := persistence.NewGormPlanRepository(db)
	paramRepo := persistence.NewGormSystemParameterRepository(db)

	assembler := services.NewParameterAssembler(officeRepo, distributorRepo, planRepo, paramRepo)
	projector := services.NewPlanProjector()
	planner := services.NewPlannerService(assembler, projector, planRepo, solver.Options{
		TimeLimit: cfg.Solver.TimeLimit,
		MIPGap:    cfg.Solver.MIPGap,
		IntTol:    cfg.Solver.IntegralityTolerance,
	}, cfg.Solver.MaxConcurrent)

	mediator := common.NewMediator()
	if err := common.RegisterHandler[*commands.CreatePlanCommand](mediator, commands.NewCreatePlanHandler(planner)); err != nil {
		return nil, err
	}
	if err := common.RegisterHandler[*queries.GetPlanQuery](mediator, queries.NewGetPlanHandler(planRepo)); err != nil {
		return nil, err
	}
	if err := common.RegisterHandler[*queries.ListPlansQuery](mediator, queries.NewListPlansHandler(planRepo)); err != nil {
		return nil, err
	}

	forecaster := services.NewMockForecaster(cfg.Demand.MockBaseWorkers)
	return httpapi.NewHandler(mediator, forecaster), nil
}

// seed loads the demo catalogue: three offices, three distributors with
// volume tariffs and routes, and the tunable model coefficients.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	officeRepo := persistence.NewGormOfficeRepository(db)
	distributorRepo := persistence.NewGormDistributorRepository(db)
	paramRepo := persistence.NewGormSystemParameterRepository(db)

	offices := []*planning.Office{
		{Name: "Warsaw HQ", Address: "ul. Prosta 20, Warszawa", Capacity: 500, LossRate: 0.02, IsActive: true},
		{Name: "Krakow Office", Address: "ul. Pawia 9, Krakow", Capacity: 300, LossRate: 0.02, IsActive: true},
		{Name: "Gdansk Office", Address: "al. Grunwaldzka 472, Gdansk", Capacity: 200, LossRate: 0.03, IsActive: true},
	}
	for _, office := range offices {
		if err := officeRepo.Add(ctx, office); err != nil {
			return err
		}
	}

	distributors := []*planning.Distributor{
		{
			Name:        "Bean Express",
			Description: "Fast regional roaster, next-day delivery",
			IsActive:    true,
			Tariff: planning.Tariff{
				Thresholds: []float64{0, 50, 150},
				TierPrices: []float64{48, 44, 40},
			},
			SupplyCaps: []float64{400},
			Routes: []planning.Route{
				{OfficeID: offices[0].ID, FixedCost: 120, LeadTime: 1},
				{OfficeID: offices[1].ID, FixedCost: 150, LeadTime: 1},
				{OfficeID: offices[2].ID, FixedCost: 180, LeadTime: 2},
			},
		},
		{
			Name:        "Kawa Hurt",
			Description: "Bulk importer, cheap at volume",
			IsActive:    true,
			Tariff: planning.Tariff{
				Thresholds: []float64{0, 50, 150, 300},
				TierPrices: []float64{46, 42, 38, 35},
			},
			SupplyCaps: []float64{800},
			Routes: []planning.Route{
				{OfficeID: offices[0].ID, FixedCost: 200, LeadTime: 3},
				{OfficeID: offices[1].ID, FixedCost: 200, LeadTime: 3},
				{OfficeID: offices[2].ID, FixedCost: 250, LeadTime: 4},
			},
		},
		{
			Name:        "Palarnia Lokalna",
			Description: "Small-batch roaster, flat pricing",
			IsActive:    true,
			Tariff: planning.Tariff{
				Thresholds: []float64{0},
				TierPrices: []float64{52},
			},
			SupplyCaps: []float64{150},
			Routes: []planning.Route{
				{OfficeID: offices[0].ID, FixedCost: 80, LeadTime: 0},
				{OfficeID: offices[1].ID, FixedCost: 90, LeadTime: 1},
				{OfficeID: offices[2].ID, FixedCost: 90, LeadTime: 1},
			},
		},
	}
	for _, dist := range distributors {
		if err := distributorRepo.Add(ctx, dist); err != nil {
			return err
		}
	}

	params := []struct {
		name, description string
		value             float64
	}{
		{services.ParamKgPerWorker, "Expected coffee consumption per worker per day [kg]", cfg.Demand.KgPerWorker},
		{services.ParamConferenceFactor, "Demand multiplier applied once per conference", cfg.Demand.ConferenceFactor},
		{services.ParamCorrectionCost, "Penalty per adjusted kilogram in correction runs [PLN]", 2.5},
		{services.ParamCorrectionMax, "Maximum adjusted kilograms per order slot per day", 100},
	}
	for _, p := range params {
		if err := paramRepo.Set(ctx, p.name, p.value, p.description); err != nil {
			return err
		}
	}

	log.Printf("seeded %d offices, %d distributors, %d parameters", len(offices), len(distributors), len(params))
	return nil
}
