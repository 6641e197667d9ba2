package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mirelabs/bankforge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new BankForge project",
	Long:  `Write a default bankforge.config.json and a starter .env into the current directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitializeProject(); err != nil {
			return err
		}

		color.Green("✓ Created %s", config.FileName)
		color.Green("✓ Created .env")
		fmt.Println()
		color.Cyan("Next steps:")
		fmt.Println("  1. Review the generation settings in", config.FileName)
		fmt.Println("  2. Point DATABASE_URL at your database (defaults to a local SQLite file)")
		fmt.Println("  3. Run: bankforge generate")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
