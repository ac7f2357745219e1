package midi

import (
	"log/slog"
	"math"

	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/pitch"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"
)

// DefaultLyric is sung by imported notes that have no lyric event.
const DefaultLyric = "a"

type reducedEvent struct {
	offsetMs  int
	isNoteOff bool
	key       uint8
	lyric     string
}

// ImportNotes extracts a single vocal line from s, placed in ms. Notes of
// every track are merged. A note starting while another one sounds cuts the
// earlier one short. A lyric event at the same tick as a note on names it.
func ImportNotes(s *smf.SMF) []model.NoteData {
	var events []reducedEvent
	for _, track := range s.Tracks {
		var absTicks int64
		lyrics := make(map[int64]string)
		for _, event := range track {
			absTicks += int64(event.Delta)
			var lyric string
			if event.Message.GetMetaLyric(&lyric) {
				lyrics[absTicks] = lyric
			}
		}

		absTicks = 0
		for _, event := range track {
			absTicks += int64(event.Delta)
			offsetMs := int(math.Round(float64(s.TimeAt(absTicks)) / 1000))
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				lyric, ok := lyrics[absTicks]
				if !ok || lyric == "" {
					lyric = DefaultLyric
				}
				events = append(events, reducedEvent{offsetMs: offsetMs, key: key, lyric: lyric})
			case event.Message.GetNoteOff(&channel, &key, &velocity),
				event.Message.GetNoteOn(&channel, &key, &velocity):
				events = append(events, reducedEvent{offsetMs: offsetMs, isNoteOff: true, key: key})
			}
		}
	}

	// Earlier events first, note offs before note ons at the same time.
	slices.SortStableFunc(events, func(a, b reducedEvent) bool {
		if a.offsetMs != b.offsetMs {
			return a.offsetMs < b.offsetMs
		}
		return a.isNoteOff && !b.isNoteOff
	})

	var notes []model.NoteData
	var sounding *reducedEvent
	end := func(atMs int) {
		if sounding == nil {
			return
		}
		if duration := atMs - sounding.offsetMs; duration > 0 {
			notes = append(notes, model.NoteData{
				Position: sounding.offsetMs,
				Duration: duration,
				Pitch:    pitch.NoteNumToPitch(int(sounding.key)),
				Lyric:    sounding.lyric,
			})
		}
		sounding = nil
	}
	for i := range events {
		evt := events[i]
		if evt.isNoteOff {
			if sounding != nil && sounding.key == evt.key {
				end(evt.offsetMs)
			}
			continue
		}
		end(evt.offsetMs)
		sounding = &evt
	}
	if sounding != nil {
		slog.Warn("dropping note without note off", "position", sounding.offsetMs, "key", sounding.key)
	}
	return notes
}
