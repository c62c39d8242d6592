package cmd

import (
	"fmt"
	"os"

	"github.com/markb/sareeone/internal/config"
	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

var rootCmd = &cobra.Command{
	Use:     "sareeone",
	Short:   "Saree One - food delivery backend",
	Long:    `Catalog API, staff sessions and realtime order notifications for the Saree One delivery apps.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			return os.Setenv(config.PathEnvVar, path)
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("sareeone version {{.Version}}\n")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: sareeone.yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the flags the user set
// explicitly on top of it.
func loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	overrides := map[string]any{}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	return config.Load(overrides)
}
