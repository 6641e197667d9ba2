package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════╗",
		"║  ██████╗  █████╗ ███╗   ██╗██╗  ██╗                  ║",
		"║  ██╔══██╗██╔══██╗████╗  ██║██║ ██╔╝                  ║",
		"║  ██████╔╝███████║██╔██╗ ██║█████╔╝                   ║",
		"║  ██╔══██╗██╔══██║██║╚██╗██║██╔═██╗                   ║",
		"║  ██████╔╝██║  ██║██║ ╚████║██║  ██╗                  ║",
		"║  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝ FORGE            ║",
		"║                                                      ║",
		"║     Reproducible synthetic banking datasets          ║",
		"╚══════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("              ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "bankforge",
	Short: "Deterministic synthetic retail-banking dataset generator",
	Long: `
BankForge populates a relational database with a reproducible synthetic
retail-banking dataset: institutions, customers, credentials, accounts,
transactions, loans, payments, and customer service sessions.

A fixed set of anomalies is planted in the data on every run, and an
investigation guide describing them is written alongside the dataset.

Database Support:
- PostgreSQL
- MySQL
- SQLite (embedded, the default)`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("BankForge CLI version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bankforge.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("bankforge.config")
	}

	viper.AutomaticEnv()

	viper.ReadInConfig()
}
