package reader

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/song"
	"github.com/jsphweid/utsu/voicebank"
	"golang.org/x/exp/slices"
)

// Project is a song as saved to a YAML project file.
type Project struct {
	Name         string           `yaml:"name"`
	Tempo        float64          `yaml:"tempo"`
	Voicebank    string           `yaml:"voicebank"`
	Flags        string           `yaml:"flags,omitempty"`
	OutputFile   string           `yaml:"output_file,omitempty"`
	Mode2        *bool            `yaml:"mode2,omitempty"`
	Instrumental string           `yaml:"instrumental,omitempty"`
	Notes        []model.NoteData `yaml:"notes"`
}

func ParseProject(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return &p, nil
}

func ReadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := ParseProject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func WriteProject(path string, p *Project) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ProjectFromSong captures s so it can be written back to disk.
func ProjectFromSong(s *song.Song) *Project {
	mode2 := s.Mode2()
	instrumental, _ := s.Instrumental()
	return &Project{
		Name:         s.ProjectName(),
		Tempo:        s.Tempo(),
		Voicebank:    s.VoiceDir(),
		Flags:        s.Flags(),
		OutputFile:   s.OutputFile(),
		Mode2:        &mode2,
		Instrumental: instrumental,
		Notes:        s.Notes(),
	}
}

// Song builds a standardized song from p, sung by vb. Notes may be listed
// in any order but two notes may not share a position.
func (p *Project) Song(vb *voicebank.Voicebank) (*song.Song, error) {
	b := song.New(vb).ToBuilder().
		SetFlags(p.Flags).
		SetInstrumental(p.Instrumental)
	if p.Name != "" {
		b.SetProjectName(p.Name)
	}
	if p.Tempo != 0 {
		b.SetTempo(p.Tempo)
	}
	if p.OutputFile != "" {
		b.SetOutputFile(p.OutputFile)
	}
	if p.Mode2 != nil {
		b.SetMode2(*p.Mode2)
	}

	notes := append([]model.NoteData(nil), p.Notes...)
	slices.SortStableFunc(notes, func(a, b model.NoteData) bool {
		return a.Position < b.Position
	})
	last := 0
	for _, n := range notes {
		if err := b.AddNote(n.Position-last, n); err != nil {
			return nil, fmt.Errorf("note at %d: %w", n.Position, err)
		}
		last = n.Position
	}
	return b.Build(), nil
}
