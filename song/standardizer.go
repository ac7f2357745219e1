package song

import (
	"github.com/jsphweid/utsu/voicebank"
)

// LyricResolver picks the voicebank alias for a lyric.
type LyricResolver interface {
	LyricConfig(prevLyric, lyric, pitch string) (voicebank.LyricConfig, bool)
}

// Standardizer fits a note to its neighbors and voicebank: it shrinks the
// note to end where the next one starts, resolves the alias to sing and
// fits preutterance and overlap into the previous note.
type Standardizer struct{}

func NewStandardizer() *Standardizer {
	return &Standardizer{}
}

// Standardize returns note as it should be with the given neighbors. prev
// and next may be nil. Delta is never changed.
func (s *Standardizer) Standardize(prev *Note, note Note, next *Note, resolver LyricResolver) Note {
	if next != nil {
		note.setLength(next.delta)
	} else {
		note.setLength(note.duration)
	}

	prevLyric := ""
	if prev != nil {
		prevLyric = prev.lyric
	}

	var preutter, overlap float64
	note.trueLyric = ""
	if resolver != nil {
		if config, ok := resolver.LyricConfig(prevLyric, note.lyric, note.Pitch()); ok {
			note.trueLyric = config.TrueLyric
			preutter = config.Preutter
			overlap = config.Overlap
		}
	}
	if note.config.Preutter != nil {
		preutter = *note.config.Preutter
	}
	if note.config.Overlap != nil {
		overlap = *note.config.Overlap
	}

	// The preutterance and overlap may not take more than half of the
	// previous note.
	if prev != nil {
		maxLength := float64(min(prev.duration, note.delta)) / 2
		if preutter-overlap > maxLength {
			ratio := maxLength / (preutter - overlap)
			preutter *= ratio
			overlap *= ratio
		}
	}
	note.realPreutter = preutter
	note.realOverlap = overlap
	return note
}
