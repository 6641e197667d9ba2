package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mirelabs/bankforge/internal/anomaly"
	"github.com/mirelabs/bankforge/internal/config"
	"github.com/mirelabs/bankforge/internal/generate"
	"github.com/mirelabs/bankforge/internal/report"
	"github.com/mirelabs/bankforge/internal/store"
)

var (
	genFresh        bool
	genSeed         int64
	genCustomers    int
	genTransactions int
	genProfile      string
	genReport       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the synthetic dataset",
	Long: `Populate the configured database with a full synthetic dataset and
write the anomaly investigation guide next to it. The same seed always
produces the same dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("seed") {
			cfg.Generate.Seed = genSeed
		}
		if cmd.Flags().Changed("customers") {
			cfg.Generate.Customers = genCustomers
		}
		if cmd.Flags().Changed("transactions") {
			cfg.Generate.Transactions = genTransactions
		}
		if cmd.Flags().Changed("profile") {
			cfg.AnomalyProfile = genProfile
		}
		if cmd.Flags().Changed("report") {
			cfg.ReportPath = genReport
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		profile := anomaly.DefaultProfile()
		if cfg.AnomalyProfile != "" {
			profile, err = anomaly.LoadProfile(cfg.AnomalyProfile)
			if err != nil {
				return err
			}
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Provider, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		pipeline := generate.New(cfg, st, profile)
		pipeline.Fresh = genFresh

		findings, err := pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}

		if err := report.WriteFile(cfg.ReportPath, profile, findings,
			cfg.Generate.Seed, pipeline.Now()); err != nil {
			return err
		}
		color.Green("✓ Investigation guide written to %s", cfg.ReportPath)

		counts, err := pipeline.Summary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println()
		color.Cyan("Dataset summary:")
		for _, table := range store.TableOrder() {
			fmt.Printf("  %-18s %8d\n", table, counts[table])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&genFresh, "fresh", false, "Clear previously generated rows before running")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Seed for the random source")
	generateCmd.Flags().IntVar(&genCustomers, "customers", 500, "Number of customers to generate")
	generateCmd.Flags().IntVar(&genTransactions, "transactions", 5000, "Number of transactions to generate")
	generateCmd.Flags().StringVar(&genProfile, "profile", "", "Path to a YAML anomaly profile")
	generateCmd.Flags().StringVar(&genReport, "report", "", "Path for the investigation guide")
}
