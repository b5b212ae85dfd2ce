package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/config"
	"github.com/AnyUserName/gridframe-cli/internal/errmsg"
)

var (
	version = "0.1.0"
	verbose bool

	// cfg is loaded once per invocation before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gridframe",
	Short: "Compose photos into Instagram-ready frames and 3x3 grids",
	Long: `gridframe fits arbitrary photos into Instagram's fixed canvases
(portrait 1080x1350, square 1080x1080, landscape 1080x566), either
letterboxed over a colour picked from the photo or cover-cropped
around an anchor point.

Up to nine images can be laid out on a grid and exported together
as numbered JPEGs in a zip bundle.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()
		setupLogging()

		c, err := config.Load()
		if err != nil {
			return errmsg.Wrap(errmsg.OpConfig, err)
		}
		cfg = c
		logVerbose("config: preview=%d export=%d debounce=%s out=%s",
			cfg.PreviewQuality, cfg.ExportQuality, cfg.Debounce(), cfg.OutDir)
		return nil
	},
}

// Root returns the root command for the executable.
func Root() *cobra.Command {
	return rootCmd
}

// Version returns the build version.
func Version() string {
	return version
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"gridframe %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...))
}
