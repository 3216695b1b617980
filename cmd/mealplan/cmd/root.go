package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the mealplan command tree. Every command reads its
// settings from v, so flags, MEALPLAN_* variables and the config file all
// feed the same keys.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "mealplan",
		Short: "Generate meal plans and manage the food catalog",
		Long: `mealplan runs the meal-plan generator outside the API server. It can
fill a set of slots for a patient from a JSON or Postgres catalog and seed
the catalog with synthetic foods.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mealplan.yaml)")
	root.PersistentFlags().String("database-url", "", "Postgres connection string (or DATABASE_URL)")
	v.BindPFlag("database-url", root.PersistentFlags().Lookup("database-url"))
	v.BindEnv("database-url", "MEALPLAN_DATABASE_URL", "DATABASE_URL")

	root.AddCommand(newGenerateCmd(v), newSeedCmd(v))
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".mealplan")
	}

	v.SetEnvPrefix("MEALPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

func Execute() {
	if err := NewRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
