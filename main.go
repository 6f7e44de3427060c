package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trigator.klederson.com/internal/app"
	"trigator.klederson.com/internal/config"
	"trigator.klederson.com/internal/report"
	"trigator.klederson.com/internal/wireless"
)

var (
	cfgFile  string
	flagDemo bool
)

func main() {
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "trigator",
		Short: "TRI-GATOR - locate a wireless transmitter from three signal readings",
		Long: `TRI-GATOR estimates where a wireless transmitter is by measuring its signal
strength at three known anchor points and trilaterating with the log-distance
path-loss model.

Walk to each anchor, select it and press enter to sample. Once all three are
measured press c to calculate. Use --demo for a simulated transmitter.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./trigator.yaml)")
	pf.String("log-file", defaults.Logging.File, "write logs to this file")
	pf.String("log-level", defaults.Logging.Level, "log level: debug, info, warn, error")
	pf.Float64P("exponent", "n", defaults.PathLossExponent, "path-loss exponent (2.0-5.0)")

	f := rootCmd.Flags()
	f.BoolVar(&flagDemo, "demo", false, "Run in demo mode with a simulated transmitter (no hardware required)")
	f.String("source", defaults.Source, "reading source: iwconfig, ble, radiotap or demo")
	f.StringP("iface", "i", defaults.Interface, "wireless interface (iwconfig, radiotap)")
	f.Int("samples", defaults.Sampling.Count, "readings averaged per anchor (1-20)")
	f.Duration("interval", defaults.Sampling.Interval, "pause between readings (1ms-2s)")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("logging.file", pf.Lookup("log-file"))
	viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	viper.BindPFlag("path_loss_exponent", pf.Lookup("exponent"))
	viper.BindPFlag("source", f.Lookup("source"))
	viper.BindPFlag("interface", f.Lookup("iface"))
	viper.BindPFlag("sampling.count", f.Lookup("samples"))
	viper.BindPFlag("sampling.interval", f.Lookup("interval"))

	rootCmd.AddCommand(&cobra.Command{
		Use:          "solve FILE",
		Short:        "Solve a recorded survey file and print the estimate",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runSolve,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("the interactive display needs a terminal; use 'trigator solve FILE' for batch runs")
	}

	if flagDemo {
		viper.Set("source", config.SourceDemo)
	}
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	src, err := wireless.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./trigator --source radiotap --iface wlan0mon   (monitor mode)")
		fmt.Fprintln(os.Stderr, "  ./trigator --demo    (demo mode, no hardware needed)")
		return err
	}
	defer src.Close()

	logger.Info("starting", "source", src.Name, "exponent", cfg.PathLossExponent,
		"samples", cfg.Sampling.Count, "interval", cfg.Sampling.Interval)

	model := app.New(cfg, src.Source, src.Name, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.Attach(p)

	_, err = p.Run()
	return err
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := report.LoadSurvey(args[0])
	if err != nil {
		return err
	}

	n := s.ExponentOr(cfg.PathLossExponent)
	if cmd.Flags().Changed("exponent") {
		n = cfg.PathLossExponent
	}

	r := report.Solve(s, n)
	report.Print(cmd.OutOrStdout(), r)
	if r.Err != nil {
		logger.Warn("survey not solved", "file", args[0], "exponent", n, "error", r.Err)
		return r.Err
	}
	logger.Info("survey solved", "file", args[0], "exponent", n, "location", r.Solution.Location.String())
	return nil
}

// newLogger builds the slog logger writing to the configured file. Logs are
// discarded when no file is set since the display owns the terminal.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
