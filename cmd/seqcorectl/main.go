// Command seqcorectl is an operator CLI over the core's music-theory and
// timing tables: scale/chord lookup, BBT/HMS-to-pulse conversion, and
// tempo detection from a WAV file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seqcore/internal/bpmdetect"
	"seqcore/internal/miditime"
	"seqcore/internal/scales"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seqcorectl",
		Short: "Inspect scales, chords, and timing without a running sequencer",
	}
	root.AddCommand(newScaleCmd(), newChordCmd(), newBBTCmd(), newTempoCmd())
	return root
}

func newScaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "List scales or show a scale's notes",
	}
	cmd.AddCommand(newScaleListCmd(), newScaleNotesCmd())
	return cmd
}

func newScaleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the 14 built-in scale names",
		RunE: func(cmd *cobra.Command, args []string) error {
			for s := scales.Off; int(s) < 14; s++ {
				fmt.Fprintln(cmd.OutOrStdout(), scales.Name(s))
			}
			return nil
		},
	}
}

func newScaleNotesCmd() *cobra.Command {
	var key int
	cmd := &cobra.Command{
		Use:   "notes <scale-name>",
		Short: "Print the note names in a scale at the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := scales.ParseScaleName(args[0])
			if !ok {
				return fmt.Errorf("unknown scale %q", args[0])
			}
			for note := 0; note < 12; note++ {
				if scales.Policy(s, key, note) {
					fmt.Fprintln(cmd.OutOrStdout(), scales.NoteName(note))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&key, "key", 0, "key, as a semitone offset from C (0-11)")
	return cmd
}

func newChordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chord",
		Short: "List chords or show a chord's notes",
	}
	cmd.AddCommand(newChordListCmd(), newChordNotesCmd())
	return cmd
}

func newChordListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the 40 built-in chord qualities",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < scales.ChordCount(); i++ {
				c, _ := scales.ChordByIndex(i)
				fmt.Fprintln(cmd.OutOrStdout(), c.Name)
			}
			return nil
		},
	}
}

func newChordNotesCmd() *cobra.Command {
	var root int
	cmd := &cobra.Command{
		Use:   "notes <chord-name>",
		Short: "Print the absolute note numbers for a chord at the given root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := scales.ChordByName(args[0])
			if !ok {
				return fmt.Errorf("unknown chord %q", args[0])
			}
			for _, n := range scales.ChordNotes(root, c) {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&root, "root", 60, "root note number (60 = middle C)")
	return cmd
}

func newBBTCmd() *cobra.Command {
	var bpm float64
	var ppqn, beatsPerBar, beatWidth int
	var timeFormat bool

	toPulses := &cobra.Command{
		Use:   "to-pulses <M:B:T or H:M:S.frac>",
		Short: "Convert a BBT or HMS string to a pulse count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timing := miditime.Timing{Bpm: bpm, BeatsPerBar: beatsPerBar, BeatWidth: beatWidth, Ppqn: ppqn}
			p := miditime.StringToPulses(args[0], timing, timeFormat)
			if p == miditime.NullPulse {
				return fmt.Errorf("could not parse %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), int64(p))
			return nil
		},
	}

	toString := &cobra.Command{
		Use:   "to-string <pulses>",
		Short: "Convert a pulse count to a BBT or HMS string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p int64
			if _, err := fmt.Sscanf(args[0], "%d", &p); err != nil {
				return fmt.Errorf("could not parse %q as pulses: %w", args[0], err)
			}
			timing := miditime.Timing{Bpm: bpm, BeatsPerBar: beatsPerBar, BeatWidth: beatWidth, Ppqn: ppqn}
			if timeFormat {
				fmt.Fprintln(cmd.OutOrStdout(), miditime.PulsesToStringHMS(miditime.Pulse(p), timing))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), miditime.PulsesToStringBBT(miditime.Pulse(p), timing))
			}
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:   "bbt",
		Short: "Convert between pulses and M:B:T / H:M:S strings",
	}
	for _, sub := range []*cobra.Command{toPulses, toString} {
		sub.Flags().Float64Var(&bpm, "bpm", 120, "tempo in beats per minute")
		sub.Flags().IntVar(&ppqn, "ppqn", 192, "pulses per quarter note")
		sub.Flags().IntVar(&beatsPerBar, "beats-per-bar", 4, "beats per measure")
		sub.Flags().IntVar(&beatWidth, "beat-width", 4, "beat width (denominator)")
		sub.Flags().BoolVar(&timeFormat, "time", false, "use H:M:S.frac instead of M:B:T")
		cmd.AddCommand(sub)
	}
	return cmd
}

func newTempoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tempo-from-wav <file.wav>",
		Short: "Guess a tempo and beat count from a WAV file's duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			beats, bpm, err := bpmdetect.Detect(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bpm=%.2f beats=%.0f\n", bpm, beats)
			return nil
		},
	}
	return cmd
}
