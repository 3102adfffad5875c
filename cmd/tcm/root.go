package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/tcm/internal/apiclient"
	"github.com/JonMunkholm/tcm/internal/logging"
)

// app carries state shared by all subcommands. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	configDir string
	cfg       *viper.Viper
	client    *apiclient.Client
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tcm",
		Short:         "Command-line client for the test-case manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: user config dir/tcm)")
	flags.String("api-url", "", "server base URL (overrides api_url)")
	flags.Duration("timeout", 0, "per-request timeout (overrides timeout)")
	flags.String("log-level", "", "diagnostic log level (overrides log_level)")

	root.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newTemplateCmd(a),
		newCatalogCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// init loads configuration, binds flag overrides and builds the client.
func (a *app) init(cmd *cobra.Command) error {
	dir := a.configDir
	if dir == "" {
		var err error
		if dir, err = defaultConfigDir(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		cfgKeyAPIURL:   "api-url",
		cfgKeyTimeout:  "timeout",
		cfgKeyLogLevel: "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := cfg.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel), "text")

	opts := []apiclient.Option{}
	if d := cfg.GetDuration(cfgKeyTimeout); d > 0 {
		opts = append(opts, apiclient.WithTimeout(d))
	}
	a.client = apiclient.New(cfg.GetString(cfgKeyAPIURL), opts...)

	a.logger.Debug("configuration loaded",
		"config_dir", dir,
		"api_url", a.client.BaseURL(),
	)
	return nil
}
