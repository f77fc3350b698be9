package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pacer/internal/bootstrap"
	walkdto "pacer/internal/modules/walk/dto"
	"pacer/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir    string
	configPath string
	storage    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "pacer",
		Short:         "Count steps on walks and keep a history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data>/pacer.yaml)")
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "walk storage backend: sqlite|file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newTrackCmd(flags))
	root.AddCommand(newWalksCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newSensorCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.dataDir, flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.storage != "" {
		cfg.Storage = flags.storage
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func loadApp(flags *rootFlags, adjust ...func(*config.Config)) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(&cfg)
	}
	return bootstrap.New(cfg)
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run pacer terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			// Bell haptics would corrupt the alt screen.
			app, err := loadApp(flags, func(c *config.Config) { c.Session.Haptics = false })
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newTrackCmd(flags *rootFlags) *cobra.Command {
	var (
		duration  time.Duration
		replay    string
		synthetic bool
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record a walk until interrupted or --for elapses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, func(c *config.Config) {
				if replay != "" {
					c.Sensor.ReplayFile = replay
				}
				if synthetic {
					c.Sensor.Synthetic = true
				}
			})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := interruptContext()
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			started, err := app.SessionCLI.Start(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "walking (%s) since %s, ctrl+c to stop\n", started.Mode, started.StartedAt.Local().Format("15:04:05"))

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case <-ticker.C:
					if quiet {
						continue
					}
					r, err := app.SessionCLI.Readout(ctx)
					if err != nil {
						continue
					}
					_, _ = fmt.Fprintf(out, "\r%s  %5d steps  %6.1f spm ", formatElapsed(r.ElapsedMS), r.Steps, r.StepsPerMinute)
				}
			}

			result, err := app.SessionCLI.Stop(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			if !result.Recorded {
				_, _ = fmt.Fprintf(out, "walk of %s too short, not saved\n", formatElapsed(result.DurationMS))
				return nil
			}
			_, _ = fmt.Fprintf(out, "saved %s  %d steps  %.1f spm (%s)\n",
				formatElapsed(result.DurationMS), result.Steps, result.StepsPerMinute, result.WalkID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "stop automatically after this long")
	cmd.Flags().StringVar(&replay, "replay", "", "replay accelerometer samples from a CSV file (t_ms,x,y,z)")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use the synthetic step feed")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print live readouts")
	return cmd
}

func newWalksCmd(flags *rootFlags) *cobra.Command {
	walks := &cobra.Command{Use: "walks", Short: "Walk history commands"}

	var (
		period   string
		asJSON   bool
		index    int
		walkID   string
		format   string
		outPath  string
		exportPd string
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded walks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.WalkCLI.List(context.Background(), period)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no walks")
				return nil
			}
			for _, w := range items {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatWalk(w))
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&period, "period", "week", "week|month|all")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a walk by --index or --id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (index < 0) == (walkID == "") {
				return errors.New("exactly one of --index or --id is required")
			}
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := context.Background()
			var out walkdto.DeleteOutput
			if walkID != "" {
				out, err = app.WalkCLI.DeleteByID(ctx, walkID)
			} else {
				out, err = app.WalkCLI.Delete(ctx, index)
			}
			if err != nil {
				return err
			}
			if !out.Deleted {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing deleted")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", formatWalk(out.Walk))
			return nil
		},
	}
	deleteCmd.Flags().IntVar(&index, "index", -1, "store index of the walk")
	deleteCmd.Flags().StringVar(&walkID, "id", "", "walk id")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export walks to CSV or Parquet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outPath == "" {
				return errors.New("--out is required")
			}
			if format == "" {
				format = formatFromPath(outPath)
			}
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.WalkCLI.Export(context.Background(), format, outPath, exportPd)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d walks to %s (%s)\n", out.Count, out.Path, out.Format)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "", "csv|parquet (default from --out extension)")
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file")
	exportCmd.Flags().StringVar(&exportPd, "period", "all", "week|month|all")

	walks.AddCommand(listCmd, deleteCmd, exportCmd)
	return walks
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var (
		period string
		asJSON bool
		chart  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize walks over a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := context.Background()
			stats, err := app.WalkCLI.Stats(ctx, period)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, stats)
			}
			_, _ = fmt.Fprintf(out, "period:        %s\n", stats.Period)
			_, _ = fmt.Fprintf(out, "walks:         %d\n", stats.WalkCount)
			_, _ = fmt.Fprintf(out, "avg steps:     %d\n", stats.AverageSteps)
			_, _ = fmt.Fprintf(out, "avg pace:      %.1f spm\n", stats.AveragePace)
			_, _ = fmt.Fprintf(out, "total steps:   %d\n", stats.TotalSteps)
			_, _ = fmt.Fprintf(out, "total time:    %s\n", formatElapsed(stats.TotalDurationMS))
			_, _ = fmt.Fprintf(out, "best walk:     %d steps\n", stats.BestSteps)
			if !chart {
				return nil
			}
			points, err := app.WalkCLI.Chart(ctx, period)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			for _, p := range points {
				_, _ = fmt.Fprintf(out, "%s  %6d steps  %d walks\n", p.Day.Format("Mon 2006-01-02"), p.Steps, p.Walks)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "week", "week|month|all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&chart, "daily", false, "also print per-day totals")
	return cmd
}

func newSensorCmd(flags *rootFlags) *cobra.Command {
	sensor := &cobra.Command{Use: "sensor", Short: "Motion sensor commands"}
	sensor.AddCommand(&cobra.Command{
		Use:   "probe",
		Short: "Report whether a motion source is available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SensorCLI.Probe(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !out.Available {
				_, _ = fmt.Fprintf(w, "no motion sensor (%s); walks will use the synthetic feed\n", out.Detail)
				return nil
			}
			_, _ = fmt.Fprintf(w, "%s %s [%s] %d Hz\n", out.Name, out.Version, out.Mode, out.RateHz)
			return nil
		},
	})
	return sensor
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(flags, func(c *config.Config) {
				if addr != "" {
					c.HTTPAddr = addr
				}
			})
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := interruptContext()
			defer stop()
			return app.API.ListenAndServe(ctx, app.Config.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// ─── formatting ──────────────────────────────────────────────────────────────

func formatWalk(w walkdto.WalkOutput) string {
	return fmt.Sprintf("[%d] %s  %s  %5d steps  %6.1f spm  %s",
		w.Index, w.Date.Local().Format("2006-01-02 15:04"), formatElapsed(w.DurationMS), w.Steps, w.StepsPerMinute, w.ID)
}

func formatElapsed(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return "parquet"
	}
	return "csv"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
