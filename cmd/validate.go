package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/smazurov/ledcycle/internal/crossfade"
	"github.com/smazurov/ledcycle/internal/led"
	"github.com/spf13/cobra"
)

// CreateValidateCmd creates the validate command.
func CreateValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check configuration and preset table",
		Long: `Loads the configuration file, environment overrides and preset table exactly as the daemon would, ` +
			`builds the crossfade engine against a no-op output and prints the resulting cycle. Exits non-zero on any error.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := runValidate(cmd.OutOrStdout(), configFile); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "invalid configuration:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "ledcycle.toml", "Path to configuration file")
	return cmd
}

func runValidate(w io.Writer, configFile string) error {
	s, err := load(configFile)
	if err != nil {
		return err
	}

	noopCfg := s.output
	noopCfg.Backend = led.BackendNoop
	out, err := led.New(noopCfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	if _, err := crossfade.New(s.table, out,
		crossfade.WithStepInterval(s.engine.StepInterval),
		crossfade.WithHoldInterval(s.engine.HoldInterval),
		crossfade.WithInitialLevel(s.engine.InitialLevel),
	); err != nil {
		return err
	}

	backend := s.output.Backend
	if backend == "" {
		backend = led.BackendAuto
	}
	fmt.Fprintf(w, "Configuration OK: %s\n", s.opts.Config)
	fmt.Fprintf(w, "  backend:  %s (%d channels, inverted=%t)\n", backend, s.output.ChannelCount(), s.output.Inverted)
	fmt.Fprintf(w, "  step:     %s\n", s.engine.StepInterval)
	fmt.Fprintf(w, "  hold:     %s\n", s.engine.HoldInterval)
	fmt.Fprintf(w, "  initial:  %d\n", s.engine.InitialLevel)
	fmt.Fprintf(w, "Presets (%d):\n", s.table.Len())

	presets := s.table.All()
	prev := make([]uint8, s.table.Channels())
	for ch := range prev {
		prev[ch] = s.engine.InitialLevel
	}
	var cycle time.Duration
	for i, p := range presets {
		passes := crossfade.Passes(prev, p.Levels)
		d := crossfade.Duration(passes, s.engine.StepInterval, s.engine.HoldInterval)
		fmt.Fprintf(w, "  %d  %-12s %v  %d passes, %s\n", i, displayName(p.Name), p.Levels, passes, d)
		prev = p.Levels
	}

	// Steady state starts from the last preset rather than the initial level.
	for _, p := range presets {
		cycle += crossfade.Duration(crossfade.Passes(prev, p.Levels), s.engine.StepInterval, s.engine.HoldInterval)
		prev = p.Levels
	}
	fmt.Fprintf(w, "Steady-state cycle: %s\n", cycle)
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
