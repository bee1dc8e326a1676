package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcfclean",
		Short: "Post-call cleanup for variant call sets",
		Long: `vcfclean cleans up variant call sets after calling: it recommends
depth-of-coverage filter thresholds and removes clusters of variants packed
too closely together to be trusted as independent calls.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newClusterCmd())
	cmd.AddCommand(newDepthCmd())
	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.vcfclean.yaml if present. Flags always win; config
// values only replace flag defaults the user did not set.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vcfclean")
		viper.SetConfigType("yaml")
	}
	_ = viper.ReadInConfig()
}

// newLogger builds the diagnostic logger. All logging goes to stderr so
// record output on stdout stays machine-readable.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
