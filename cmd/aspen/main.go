// Command aspen launches the built-in demo scenes. Each subcommand opens a
// window, except ascii, which renders to the terminal. Shared flags control
// window size, frameloop mode, camera projection, and pixel ratio; a TOML
// config file can supply defaults for any flag not set on the command line.
package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aspen3d/aspen"
)

var (
	flagWidth      int
	flagHeight     int
	flagFrameloop  string
	flagOrtho      bool
	flagPixelRatio float64
	flagStats      bool
	flagConfig     string
	flagVerbose    bool

	logger *zap.Logger
)

// fileConfig mirrors the global flags for TOML defaults.
type fileConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Frameloop  string  `toml:"frameloop"`
	Ortho      bool    `toml:"ortho"`
	PixelRatio float64 `toml:"pixel_ratio"`
	Stats      bool    `toml:"stats"`
}

var rootCmd = &cobra.Command{
	Use:   "aspen",
	Short: "aspen demo scenes",
	Long: `aspen launches the built-in demo scenes for the aspen scene runtime.

Each subcommand opens a window rendered through the declarative bridge;
ascii renders offscreen and prints to the terminal instead. Shared flags
control window size, frameloop mode, camera projection, and pixel ratio,
and a TOML config file can provide defaults for flags not given on the
command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyConfigFile(cmd); err != nil {
			return err
		}
		cfg := zap.NewProductionConfig()
		if flagVerbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagWidth, "width", 960, "window width in points")
	pf.IntVar(&flagHeight, "height", 600, "window height in points")
	pf.StringVar(&flagFrameloop, "frameloop", "always", "render scheduling: always, demand, or never")
	pf.BoolVar(&flagOrtho, "ortho", false, "use an orthographic camera")
	pf.Float64Var(&flagPixelRatio, "pixel-ratio", 0, "forced pixel ratio, 0 for the device ratio")
	pf.BoolVar(&flagStats, "stats", false, "overlay frame statistics")
	pf.StringVar(&flagConfig, "config", "", "TOML config file with flag defaults")
	pf.BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

// applyConfigFile fills flags the command line left untouched from the TOML
// file, if one was given.
func applyConfigFile(cmd *cobra.Command) error {
	if flagConfig == "" {
		return nil
	}
	data, err := os.ReadFile(flagConfig)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", flagConfig, err)
	}
	flags := cmd.Flags()
	if fc.Width > 0 && !flags.Changed("width") {
		flagWidth = fc.Width
	}
	if fc.Height > 0 && !flags.Changed("height") {
		flagHeight = fc.Height
	}
	if fc.Frameloop != "" && !flags.Changed("frameloop") {
		flagFrameloop = fc.Frameloop
	}
	if fc.Ortho && !flags.Changed("ortho") {
		flagOrtho = true
	}
	if fc.PixelRatio > 0 && !flags.Changed("pixel-ratio") {
		flagPixelRatio = fc.PixelRatio
	}
	if fc.Stats && !flags.Changed("stats") {
		flagStats = true
	}
	return nil
}

// mountOptions translates the global flags into mount options.
func mountOptions() ([]aspen.Option, error) {
	var fl aspen.Frameloop
	switch flagFrameloop {
	case "always":
		fl = aspen.FrameloopAlways
	case "demand":
		fl = aspen.FrameloopDemand
	case "never":
		fl = aspen.FrameloopNever
	default:
		return nil, fmt.Errorf("unknown frameloop %q", flagFrameloop)
	}
	opts := []aspen.Option{
		aspen.WithFrameloop(fl),
		aspen.WithLogger(logger),
		aspen.WithBackground(aspen.Color{R: 0.07, G: 0.07, B: 0.1}),
	}
	if flagOrtho {
		opts = append(opts, aspen.WithCamera(aspen.CameraConfig{Orthographic: true, OrthoSize: 6}))
	}
	if flagPixelRatio > 0 {
		opts = append(opts, aspen.WithPixelRatio(flagPixelRatio))
	}
	return opts, nil
}

// runWindow opens the demo window for a mounted surface.
func runWindow(surface *aspen.WindowSurface, title string) error {
	return aspen.Run(surface, aspen.RunConfig{
		Title:     title,
		Width:     flagWidth,
		Height:    flagHeight,
		Resizable: true,
		ShowStats: flagStats,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
