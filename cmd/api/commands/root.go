package commands

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/powervate/admin-api/internal/config"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "powervate-api",
		Short:        "Powervate admin back office API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadFromEnv(configPath)
			if err != nil {
				return err
			}
			cfg = c
			logger = newLogger(c.Server, cmd.ErrOrStderr())
			slog.SetDefault(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (optional, env vars override it)")

	root.AddCommand(serveCmd(), createAdminCmd(), resetPasswordCmd())
	return root.Execute()
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(sc config.ServerConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(sc.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(sc.LogFormat, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", "powervate-api")
}
