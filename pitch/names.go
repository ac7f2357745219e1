package pitch

import (
	"strconv"
	"strings"
)

var Pitches = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ReversePitches is Pitches from highest to lowest.
var ReversePitches = []string{"B", "A#", "A", "G#", "G", "F#", "F", "E", "D#", "D", "C#", "C"}

// NoteNumToPitch converts a UTAU note number to a pitch name. 60 is "C4".
func NoteNumToPitch(noteNum int) string {
	octave := noteNum/12 - 1
	idx := noteNum % 12
	if idx < 0 {
		idx += 12
		octave--
	}
	return Pitches[idx] + strconv.Itoa(octave)
}

// PitchToNoteNum is the inverse of NoteNumToPitch. Names are case-insensitive.
func PitchToNoteNum(pitch string) (int, bool) {
	pitch = strings.TrimSpace(pitch)
	if len(pitch) < 2 {
		return 0, false
	}
	name := strings.ToUpper(pitch[:1])
	rest := pitch[1:]
	if strings.HasPrefix(rest, "#") {
		name += "#"
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	for i, p := range Pitches {
		if p == name {
			return (octave+1)*12 + i, true
		}
	}
	return 0, false
}
