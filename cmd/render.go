package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsphweid/utsu/midi"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/reader"
	"github.com/jsphweid/utsu/song"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/spf13/cobra"
)

var (
	renderVoicebank string
	renderMidiOut   string
	renderSave      string
)

func init() {
	renderCmd.Flags().StringVar(&renderVoicebank, "voicebank", "", "voicebank directory, overriding the project's")
	renderCmd.Flags().StringVar(&renderMidiOut, "midi-out", "", "also write the song as a MIDI file")
	renderCmd.Flags().StringVar(&renderSave, "save", "", "also write the standardized song as a project file")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <project.yaml|song.mid>",
	Short: "Renders the pitch curve of every note",
	Long: `Reads a YAML project or a MIDI file, resolves every lyric against the
voicebank and prints each note with the pitch string a resampler needs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newVoicebankReader()
		s, err := loadSong(r, newManager(r), args[0], renderVoicebank)
		if err != nil {
			return err
		}
		printRendered(cmd, s)

		if renderMidiOut != "" {
			exported, err := midi.Export(s)
			if err != nil {
				return err
			}
			if err := exported.WriteFile(renderMidiOut); err != nil {
				return fmt.Errorf("write %s: %w", renderMidiOut, err)
			}
		}
		if renderSave != "" {
			return reader.WriteProject(renderSave, reader.ProjectFromSong(s))
		}
		return nil
	},
}

func isMidiFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mid" || ext == ".midi"
}

// loadProject reads a YAML project, or imports the notes of a MIDI file
// into an unnamed project.
func loadProject(path string) (*reader.Project, error) {
	if !isMidiFile(path) {
		return reader.ReadProject(path)
	}
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	return &reader.Project{Notes: midi.ImportNotes(s)}, nil
}

// loadSong builds the song at path. The voicebank is vbFlag if set, then
// the project's voicebank, then the default one.
func loadSong(r *reader.Reader, m *voicebank.Manager, path, vbFlag string) (*song.Song, error) {
	p, err := loadProject(path)
	if err != nil {
		return nil, err
	}
	location := vbFlag
	if location == "" && p.Voicebank != "" {
		location = r.ExpandPath(p.Voicebank)
	}

	var vb *voicebank.Voicebank
	if location == "" {
		vb, err = m.Default()
	} else {
		vb, err = m.Get(location, false)
	}
	if err != nil {
		return nil, err
	}
	return p.Song(vb)
}

// renderNotes renders every note of s, in position order.
func renderNotes(s *song.Song) []model.RenderedNote {
	res := make([]model.RenderedNote, 0, s.NumNotes())
	for _, data := range s.Notes() {
		note, _ := s.Note(data.Position)
		pitchString, err := s.NotePitchString(data.Position)
		if err != nil {
			continue
		}
		res = append(res, model.RenderedNote{
			Position:     data.Position,
			TrueLyric:    note.TrueLyric(),
			Length:       note.Length(),
			RealPreutter: note.RealPreutter(),
			RealOverlap:  note.RealOverlap(),
			Pitch:        pitchString,
		})
	}
	return res
}

func printRendered(cmd *cobra.Command, s *song.Song) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%v bpm, voicebank %s)\n", s.ProjectName(), s.Tempo(), s.VoiceDir())
	for _, n := range renderNotes(s) {
		fmt.Fprintf(out, "%d\t%s\t%d\t%.1f\t%.1f\t%s\n",
			n.Position, n.TrueLyric, n.Length, n.RealPreutter, n.RealOverlap, n.Pitch)
	}
}
