package voicebank

import (
	"strconv"

	"github.com/jsphweid/utsu/pitch"
)

// PitchMap holds the prefix and suffix a voicebank appends to lyrics sung
// at each pitch, as read from prefix.map.
type PitchMap struct {
	pitches  []string
	prefixes map[string]string
	suffixes map[string]string
}

// PitchMapData is one row of a PitchMap.
type PitchMapData struct {
	Pitch  string `json:"pitch"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

func NewPitchMap() *PitchMap {
	pitches := make([]string, 0, 7*len(pitch.ReversePitches))
	for octave := 7; octave > 0; octave-- {
		for _, p := range pitch.ReversePitches {
			pitches = append(pitches, p+strconv.Itoa(octave))
		}
	}
	return &PitchMap{
		pitches:  pitches,
		prefixes: make(map[string]string),
		suffixes: make(map[string]string),
	}
}

func (m *PitchMap) Prefix(pitch string) string {
	return m.prefixes[pitch]
}

func (m *PitchMap) Suffix(pitch string) string {
	return m.suffixes[pitch]
}

func (m *PitchMap) Put(pitch, prefix, suffix string) {
	m.prefixes[pitch] = prefix
	m.suffixes[pitch] = suffix
}

// OrderedPitches lists all 84 pitches from B7 down to C1.
func (m *PitchMap) OrderedPitches() []string {
	return append([]string(nil), m.pitches...)
}

func (m *PitchMap) Data() []PitchMapData {
	res := make([]PitchMapData, 0, len(m.pitches))
	for _, p := range m.pitches {
		res = append(res, PitchMapData{Pitch: p, Prefix: m.Prefix(p), Suffix: m.Suffix(p)})
	}
	return res
}
