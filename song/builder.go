package song

import (
	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/voicebank"
)

// Builder edits a working copy of a Song. The copy shares the original's
// note list and pitch curve until Build finalizes it.
type Builder struct {
	song         *Song
	pendingDelta int
}

// ToBuilder starts a mutation of s's settings and notes.
func (s *Song) ToBuilder() *Builder {
	ns := newSong(s.voicebank, s.standardizer, s.noteList, s.pitchbends)
	ns.logger = s.logger
	b := &Builder{song: ns}
	return b.SetTempo(s.tempo).
		SetProjectName(s.projectName).
		SetOutputFile(s.outputFile).
		SetFlags(s.flags).
		SetMode2(s.mode2).
		SetInstrumental(s.instrumental)
}

// SetTempo ignores tempos outside [MinTempo, MaxTempo].
func (b *Builder) SetTempo(tempo float64) *Builder {
	if tempo >= constants.MinTempo && tempo <= constants.MaxTempo {
		b.song.tempo = tempo
	} else {
		b.song.logger.Warn("tempo out of bounds", "tempo", tempo)
	}
	return b
}

func (b *Builder) SetProjectName(name string) *Builder {
	b.song.projectName = name
	return b
}

func (b *Builder) SetOutputFile(outputFile string) *Builder {
	b.song.outputFile = outputFile
	return b
}

func (b *Builder) SetVoicebank(vb *voicebank.Voicebank) *Builder {
	b.song.voicebank = vb
	return b
}

func (b *Builder) SetFlags(flags string) *Builder {
	b.song.flags = flags
	return b
}

func (b *Builder) SetMode2(mode2 bool) *Builder {
	b.song.mode2 = mode2
	return b
}

func (b *Builder) SetInstrumental(path string) *Builder {
	b.song.instrumental = path
	return b
}

func (b *Builder) endPosition() int {
	if tail, ok := b.song.noteList.Tail(); ok {
		return b.song.noteList.Position(tail)
	}
	return 0
}

// AddNote appends a note delta ms after the start of the previous note or
// rest, the way notes are read from a UST file.
func (b *Builder) AddNote(delta int, data model.NoteData) error {
	position := b.endPosition() + b.pendingDelta + delta
	data.Position = position
	note, err := NewNote(data)
	if err != nil {
		return err
	}
	tail, _ := b.song.noteList.Tail()
	id, err := b.song.noteList.InsertFrom(note, position, tail)
	if err != nil {
		return err
	}
	b.pendingDelta = 0
	b.song.pitchbends.AddPitchbends(position, note.pitchbend, b.song.prevNoteNum(id), note.noteNum)
	return nil
}

// AddRestNote records a rest starting delta ms after the previous note or
// rest. Rests are not stored, they only move the next note.
func (b *Builder) AddRestNote(delta int) *Builder {
	b.pendingDelta += max(0, delta)
	return b
}

// Build standardizes every note and returns the finished song.
func (b *Builder) Build() *Song {
	b.song.StandardizeAll()
	return b.song
}
