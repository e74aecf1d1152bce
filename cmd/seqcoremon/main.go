// Command seqcoremon is a read-only live monitor over a SetMapper: a
// screenset grid x mute-arm state view, fed by whatever advances the
// SetMapper's transport. Standalone, it runs against a small demo
// SetMapper so the grid has something to show; embedded in a real
// sequencer, the same model would be driven by the live SetMapper
// instead.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"seqcore/internal/miditime"
	"seqcore/internal/mutegroup"
	"seqcore/internal/pattern"
	"seqcore/internal/setmapper"
	"seqcore/internal/setmaster"
)

func main() {
	var rows, cols, setSize, maxSets int
	var bpm float64
	var ppqn int
	flag.IntVar(&rows, "rows", 4, "screenset grid rows")
	flag.IntVar(&cols, "cols", 8, "screenset grid cols")
	flag.IntVar(&setSize, "set-size", 32, "patterns per set")
	flag.IntVar(&maxSets, "max-sets", 4, "maximum number of sets")
	flag.Float64Var(&bpm, "bpm", 120, "transport bpm")
	flag.IntVar(&ppqn, "ppqn", 192, "pulses per quarter note")
	flag.Parse()

	timing := miditime.Timing{Bpm: bpm, BeatsPerBar: 4, BeatWidth: 4, Ppqn: ppqn}
	mapper := demoMapper(rows, cols, setSize, maxSets, timing)

	p := tea.NewProgram(newModel(mapper, timing))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// demoMapper builds a SetMapper with a few patterns armed and triggered
// across the whole pattern length, so the monitor has live playback
// edges to show.
func demoMapper(rows, cols, setSize, maxSets int, timing miditime.Timing) *setmapper.SetMapper {
	master := setmaster.New(rows, cols, mutegroup.RowMajor)
	mutes := mutegroup.New(rows, cols, mutegroup.RowMajor)
	mapper := setmapper.New(master, mutes, setSize, maxSets)

	length := miditime.PulsesPerMeasure(timing.Ppqn) * 4
	for n := 0; n < 6; n++ {
		pn := pattern.Number(n)
		p := pattern.New(pn, length, timing.Ppqn)
		p.Trigger.Add(0, length, 0, 0)
		p.Armed = n%2 == 0
		mapper.InstallSequence(p)
	}
	mapper.SetPlayscreen(0)
	return mapper
}
