package song

import (
	"errors"
	"fmt"

	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/pitch"
	"github.com/jsphweid/utsu/util"
)

var ErrInvalidPitch = errors.New("invalid pitch")

// Note is one note of a song. It is placed by delta, the ms since the
// previous note started (or since the song started, for the first note).
type Note struct {
	delta     int
	duration  int
	length    int
	noteNum   int
	lyric     string
	trueLyric string
	envelope  model.EnvelopeData
	pitchbend model.PitchbendData
	config    model.NoteConfigData

	// Set by the standardizer.
	realPreutter float64
	realOverlap  float64
}

// NewNote builds a note from data. The note has no delta until it is
// inserted into a NoteList.
func NewNote(data model.NoteData) (Note, error) {
	noteNum, ok := pitch.PitchToNoteNum(data.Pitch)
	if !ok {
		return Note{}, fmt.Errorf("%w: %q", ErrInvalidPitch, data.Pitch)
	}
	n := Note{noteNum: noteNum, lyric: data.Lyric, trueLyric: data.TrueLyric}
	n.setDuration(data.Duration)
	n.setLength(data.Duration)
	if data.Envelope != nil {
		n.envelope = data.Envelope.Clone()
	}
	if data.Pitchbend != nil {
		n.pitchbend = data.Pitchbend.Clone()
	}
	if data.Config != nil {
		n.config = *data.Config
	}
	return n, nil
}

func (n Note) Delta() int                     { return n.delta }
func (n Note) Duration() int                  { return n.duration }
func (n Note) Length() int                    { return n.length }
func (n Note) NoteNum() int                   { return n.noteNum }
func (n Note) Lyric() string                  { return n.lyric }
func (n Note) Envelope() model.EnvelopeData   { return n.envelope.Clone() }
func (n Note) Pitchbend() model.PitchbendData { return n.pitchbend.Clone() }
func (n Note) Config() model.NoteConfigData   { return n.config }
func (n Note) RealPreutter() float64          { return n.realPreutter }
func (n Note) RealOverlap() float64           { return n.realOverlap }
func (n Note) Pitch() string                  { return pitch.NoteNumToPitch(n.noteNum) }

// TrueLyric is the alias the voicebank will sing, or the lyric itself when
// no alias matched.
func (n Note) TrueLyric() string {
	if n.trueLyric == "" {
		return n.lyric
	}
	return n.trueLyric
}

func (n *Note) setDuration(duration int) {
	n.duration = max(0, duration)
}

// setLength clamps length to [0, duration].
func (n *Note) setLength(length int) {
	n.length = util.Clamp(length, 0, n.duration)
}

func (n Note) UpdateData(position int) model.NoteUpdateData {
	return model.NoteUpdateData{
		Position:     position,
		Length:       n.length,
		TrueLyric:    n.TrueLyric(),
		Envelope:     n.envelope.Clone(),
		Pitchbend:    n.pitchbend.Clone(),
		Config:       n.config,
		RealPreutter: n.realPreutter,
		RealOverlap:  n.realOverlap,
	}
}

func (n Note) Data(position int) model.NoteData {
	envelope := n.envelope.Clone()
	pitchbend := n.pitchbend.Clone()
	config := n.config
	return model.NoteData{
		Position:  position,
		Duration:  n.duration,
		Pitch:     n.Pitch(),
		Lyric:     n.lyric,
		TrueLyric: n.TrueLyric(),
		Envelope:  &envelope,
		Pitchbend: &pitchbend,
		Config:    &config,
	}
}
