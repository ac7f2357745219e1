package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/utsu/song"
	"github.com/jsphweid/utsu/util"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/spf13/cobra"
)

var reportVoicebank string

func init() {
	reportCmd.Flags().StringVar(&reportVoicebank, "voicebank", "", "voicebank directory, overriding the project's")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <project.yaml|song.mid>",
	Short: "Creates a report",
	Long:  `Summarizes a song: its notes, how many lyrics the voicebank could resolve and how much of it is bent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newVoicebankReader()
		s, err := loadSong(r, newManager(r), args[0], reportVoicebank)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), analyzeSong(s))
		return nil
	},
}

type songReport struct {
	name            string
	tempo           float64
	numNotes        int
	firstPosition   int
	lastPosition    int
	durations       []int
	lengths         []int
	numUnresolved   int
	numBent         int
	numPreutterFits int
}

func analyzeSong(s *song.Song) songReport {
	report := songReport{name: s.ProjectName(), tempo: s.Tempo(), numNotes: s.NumNotes()}
	notes := s.Notes()
	if len(notes) > 0 {
		report.firstPosition = notes[0].Position
		report.lastPosition = notes[len(notes)-1].Position
	}

	vb := s.Voicebank()
	for _, data := range notes {
		note, _ := s.Note(data.Position)
		report.durations = append(report.durations, note.Duration())
		report.lengths = append(report.lengths, note.Length())
		if note.Pitchbend().HasPitchbend() {
			report.numBent += 1
		}

		var config voicebank.LyricConfig
		resolved := false
		if vb != nil {
			config, resolved = vb.LookupConfig(note.TrueLyric())
		}
		switch {
		case !resolved:
			report.numUnresolved += 1
		case data.Config.Preutter == nil && note.RealPreutter() < config.Preutter:
			// Shrunk to fit into the previous note.
			report.numPreutterFits += 1
		}
	}
	return report
}

func printReport(out io.Writer, report songReport) {
	fmt.Fprintf(out, "report.name: %v\n", report.name)
	fmt.Fprintf(out, "report.tempo: %v\n", report.tempo)
	fmt.Fprintf(out, "report.numNotes: %v\n", report.numNotes)
	fmt.Fprintf(out, "report.span: %vms to %vms\n", report.firstPosition, report.lastPosition)
	fmt.Fprintf(out, "report.totalDuration: %vms\n", util.Sum(report.durations))
	fmt.Fprintf(out, "report.totalLength: %vms\n", util.Sum(report.lengths))
	fmt.Fprintf(out, "report.numUnresolved: %v\n", report.numUnresolved)
	fmt.Fprintf(out, "report.numBent: %v\n", report.numBent)
	fmt.Fprintf(out, "report.numPreutterFits: %v\n", report.numPreutterFits)
}
