package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/smazurov/ledcycle/internal/crossfade"
	"github.com/spf13/cobra"
)

// CreateSimulateCmd creates the simulate command.
func CreateSimulateCmd() *cobra.Command {
	var (
		configFile string
		presets    int
		speed      float64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the crossfade engine against a printing output",
		Long: `Runs the configured preset cycle without touching any hardware and prints the levels the engine ` +
			`would write. Intervals are divided by --speed; a speed of 0 does not sleep at all.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := runSimulate(cmd.OutOrStdout(), configFile, presets, speed, verbose); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "simulation failed:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "ledcycle.toml", "Path to configuration file")
	cmd.Flags().IntVarP(&presets, "presets", "n", 0, "Number of presets to run (0 for one full cycle)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Time scale divisor for step and hold sleeps (0 disables sleeping)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print levels after every pass")
	return cmd
}

// printer is an Output that keeps the last level written per channel.
type printer struct {
	levels []uint8
}

func (p *printer) SetLevel(channel int, level uint8) { p.levels[channel] = level }

func (p *printer) Channels() int { return len(p.levels) }

// clock advances virtual time on every sleep and optionally sleeps a scaled
// amount of real time. In verbose mode the levels seen at a sleep are held
// back until the next sleep proves it was a pass; the last sleep of a preset
// is the hold and its line is dropped by endPreset.
type clock struct {
	w       io.Writer
	out     *printer
	speed   float64
	verbose bool
	elapsed time.Duration
	pending string
}

func (c *clock) Sleep(d time.Duration) {
	c.flush()
	c.elapsed += d
	if c.verbose {
		c.pending = fmt.Sprintf("    %10s  %v\n", c.elapsed, c.out.levels)
	}
	if c.speed > 0 {
		time.Sleep(time.Duration(float64(d) / c.speed))
	}
}

func (c *clock) flush() {
	if c.pending != "" {
		io.WriteString(c.w, c.pending)
		c.pending = ""
	}
}

func (c *clock) endPreset() {
	c.pending = ""
}

func runSimulate(w io.Writer, configFile string, presets int, speed float64, verbose bool) error {
	if speed < 0 {
		return fmt.Errorf("speed must not be negative, got %g", speed)
	}

	s, err := load(configFile)
	if err != nil {
		return err
	}
	if presets <= 0 {
		presets = s.table.Len()
	}

	out := &printer{levels: make([]uint8, s.table.Channels())}
	clk := &clock{w: w, out: out, speed: speed, verbose: verbose}

	engine, err := crossfade.New(s.table, out,
		crossfade.WithStepInterval(s.engine.StepInterval),
		crossfade.WithHoldInterval(s.engine.HoldInterval),
		crossfade.WithInitialLevel(s.engine.InitialLevel),
		crossfade.WithSleeper(clk),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Simulating %d presets on %d channels from level %d\n",
		presets, s.table.Channels(), s.engine.InitialLevel)
	for range presets {
		index := engine.Active()
		p := s.table.At(index)
		passes := engine.Next()
		clk.endPreset()
		fmt.Fprintf(w, "%10s  preset %d %s held at %v after %d passes\n",
			clk.elapsed, index, displayName(p.Name), slices.Clone(out.levels), passes)
	}
	return nil
}
