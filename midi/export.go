package midi

import (
	"fmt"
	"math"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/pitch"
	"github.com/jsphweid/utsu/song"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	vocalChannel  uint8 = 0
	vocalVelocity uint8 = 100
)

func msToTicks(ms int, tempo float64) uint32 {
	if ms <= 0 {
		return 0
	}
	return uint32(math.Round(float64(ms) * tempo * constants.TicksPerBeat / 60000))
}

// Export writes s as a conductor track and one vocal track with a lyric
// event on every note. A note is cut where the next one starts.
func Export(s *song.Song) (*smf.SMF, error) {
	res := smf.NewSMF1()
	res.TimeFormat = smf.MetricTicks(constants.TicksPerBeat)
	tempo := s.Tempo()

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(s.ProjectName()))
	conductor.Add(0, smf.MetaTempo(tempo))
	conductor.Close(0)
	if err := res.Add(conductor); err != nil {
		return nil, fmt.Errorf("add conductor track: %w", err)
	}

	var voice smf.Track
	var absTicks uint32
	notes := s.Notes()
	for i, n := range notes {
		key, ok := pitch.PitchToNoteNum(n.Pitch)
		if !ok || key < 0 || key > 127 {
			continue
		}
		endMs := n.Position + n.Duration
		if i+1 < len(notes) {
			endMs = min(endMs, notes[i+1].Position)
		}
		start := max(msToTicks(n.Position, tempo), absTicks)
		end := max(msToTicks(endMs, tempo), start)
		if end == start {
			continue
		}

		voice.Add(start-absTicks, smf.MetaLyric(n.Lyric))
		voice.Add(0, midi.NoteOn(vocalChannel, uint8(key), vocalVelocity))
		voice.Add(end-start, midi.NoteOff(vocalChannel, uint8(key)))
		absTicks = end
	}
	voice.Close(0)
	if err := res.Add(voice); err != nil {
		return nil, fmt.Errorf("add vocal track: %w", err)
	}
	return res, nil
}
