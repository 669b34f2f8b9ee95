package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/flavor/go/launcher/internal/config"
	"github.com/provide-io/flavor/go/launcher/pkg/logging"
	"github.com/provide-io/flavor/go/launcher/pkg/security"
	"github.com/provide-io/flavor/go/launcher/pkg/settings"
)

// app carries the state shared by the subcommands.
type app struct {
	configPath  string
	logLevel    string
	versionFlag bool

	// logOutput replaces stderr/LAUNCHER_LOG_PATH for log output when set.
	logOutput io.Writer
	// envFiles replaces the default .env lookup when set.
	envFiles []string

	cfg    *config.Config
	logger hclog.Logger
	store  *settings.Store
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "launcher",
		Short: "Inspect and edit the launcher settings",
		Long: `Inspect and edit the launcher settings file.

Override flags (--login, --ram, ...) apply on top of the saved settings
for this run only; use "save" to persist them.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.versionFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "launcher %s\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", getBuildTimestamp())
				return nil
			}
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to launcher.yaml (defaults to the launcher directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	settings.RegisterOverrideFlags(flags)
	rootCmd.Flags().BoolVarP(&a.versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(
		newShowCmd(a),
		newSaveCmd(a),
		newResetCmd(a),
		newSetRAMCmd(a),
		newForgetCmd(a),
		newCleanCmd(a),
	)
	return rootCmd
}

// setup loads the config, builds the logger and loads the settings store.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.versionFlag {
		return nil
	}

	cfg, err := config.Load(a.configPath, a.envFiles...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	requested := a.logLevel
	if requested == "" {
		requested = cfg.LogLevel
	}
	level, source, jsonFormat := logging.ResolveLevel(requested)
	a.logger = logging.NewLogger(logging.Options{
		Name:   "launcher",
		Level:  level,
		JSON:   jsonFormat,
		Output: a.logOutput,
	})
	a.logger.Debug("🔧 Logger configured", "level", level, "source", source)
	if cfg.Source != "" {
		a.logger.Debug("📄 Loaded config file", "path", cfg.Source)
	}

	overrides, err := settings.OverridesFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	var enc security.Encrypter
	if cfg.PublicKeyPath != "" {
		key, err := security.LoadPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return fmt.Errorf("failed to load public key: %w", err)
		}
		enc = security.NewRSAEncrypter(key)
	}

	a.store = settings.NewStore(settings.StoreOptions{
		Path:      cfg.SettingsPath(),
		Magic:     cfg.Magic,
		FileMode:  cfg.FileMode,
		Defaults:  cfg.StoreDefaults(),
		Overrides: overrides,
		Encrypter: enc,
		Logger:    a.logger,
	})
	return a.store.Load()
}
