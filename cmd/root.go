// Package cmd provides the entrypoint for the messaging-webhook-app cli.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/messaging-webhook-app/internal/config"
	"github.com/isometry/messaging-webhook-app/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFilePath string
	envFilePath    string
	logger         *slog.Logger
	cfg            config.Config
	v              *viper.Viper
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the messaging-webhook-app.
func New() *cobra.Command {
	defaultCfg, err := config.Default()
	if err != nil {
		panic(err)
	}
	cfg = defaultCfg
	v = viper.New()

	cmd := &cobra.Command{
		Use:          "messaging-webhook-app",
		Short:        "Receives messaging platform webhook verification handshakes and page notifications",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			logger = newLogger(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch cfg.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambda:
				return runLambda(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", cfg.Global.Mode)
			}
		},
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "config.yaml", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&envFilePath, "env-file", ".env", "path to a dotenv file exported before the configuration is resolved")

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

// loadConfig resolves the configuration: defaults, then the configuration file, then
// environment variables (including those exported from the dotenv file), then flags.
func loadConfig() error {
	if err := config.LoadEnvFile(envFilePath); err != nil {
		return err
	}

	var overrides []func()
	overrides = append(overrides, explicitValues(envMapString)...)
	overrides = append(overrides, explicitValues(envMapBool)...)
	overrides = append(overrides, explicitValues(envMapCount)...)
	overrides = append(overrides, explicitValues(svcEnvMapString)...)
	overrides = append(overrides, explicitValues(svcEnvMapDuration)...)
	overrides = append(overrides, explicitValues(lambdaEnvMapString)...)

	if err := config.LoadFromFile(configFilePath, &cfg); err != nil {
		return err
	}
	for _, apply := range overrides {
		apply()
	}

	cfg.Global.Mode = strings.TrimSpace(cfg.Global.Mode)
	return nil
}

func newLogger(c config.Config) *slog.Logger {
	return helpers.NewLogger(os.Stdout, c.Global.Logging.Verbosity, c.Global.Logging.CallerTrace)
}

func setupDynamicFlags(cmd *cobra.Command) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)

	// Mode-specific flags are persistent on the root so the bare command, which falls back to
	// --mode, accepts them too.
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, lambdaEnvMapString)
}
