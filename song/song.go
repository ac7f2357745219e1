// Package song is the editing engine behind a piano roll: a timeline of
// notes, the pitch curve built from their pitch bends, and the operations
// that keep both consistent with a voicebank.
//
// A Song is not safe for concurrent use. Callers serialize access, for
// example with one mutex per open project.
package song

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/pitch"
	"github.com/jsphweid/utsu/voicebank"
	"golang.org/x/exp/slices"
)

type Song struct {
	voicebank    *voicebank.Voicebank
	standardizer *Standardizer
	noteList     *NoteList
	pitchbends   *pitch.Curve
	logger       *slog.Logger

	tempo        float64
	projectName  string
	outputFile   string
	flags        string
	mode2        bool
	instrumental string

	// Reset whenever the notes change.
	lastRenderedRegion model.RegionBounds
}

func New(vb *voicebank.Voicebank) *Song {
	return newSong(vb, NewStandardizer(), NewNoteList(), pitch.NewCurve())
}

func newSong(vb *voicebank.Voicebank, standardizer *Standardizer, noteList *NoteList, pitchbends *pitch.Curve) *Song {
	return &Song{
		voicebank:          vb,
		standardizer:       standardizer,
		noteList:           noteList,
		pitchbends:         pitchbends,
		logger:             slog.Default(),
		tempo:              constants.DefaultTempo,
		projectName:        constants.DefaultProjectName,
		outputFile:         "outputFile",
		mode2:              true,
		lastRenderedRegion: model.InvalidRegion,
	}
}

func (s *Song) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
		s.pitchbends.SetLogger(logger)
	}
}

func (s *Song) resolver() LyricResolver {
	if s.voicebank == nil {
		return nil
	}
	return s.voicebank
}

func (s *Song) noteChanged() {
	s.lastRenderedRegion = model.InvalidRegion
}

// prevNoteNum is the note number a bend on id starts from.
func (s *Song) prevNoteNum(id NodeID) int {
	if prev, ok := s.noteList.Prev(id); ok {
		return s.noteList.Note(prev).noteNum
	}
	return s.noteList.Note(id).noteNum
}

// AddNotes inserts notes, given in position order. Each insertion searches
// from the previous one. Notes at occupied positions or with a bad pitch
// are skipped. It returns the span of the notes that were added.
func (s *Song) AddNotes(notes []model.NoteData) model.RegionBounds {
	added := model.InvalidRegion
	if len(notes) == 0 {
		s.logger.Warn("add notes called on empty list")
		return added
	}

	hint := NoNode
	for _, data := range notes {
		note, err := NewNote(data)
		if err != nil {
			s.logger.Warn("skipping note", "position", data.Position, "err", err)
			continue
		}
		id, err := s.noteList.InsertFrom(note, data.Position, hint)
		if errors.Is(err, ErrDuplicatePosition) {
			s.logger.Debug("skipping note at occupied position", "position", data.Position)
			continue
		}
		hint = id
		s.pitchbends.AddPitchbends(data.Position, note.pitchbend, s.prevNoteNum(id), note.noteNum)
		added = added.MergeWith(model.NewRegion(data.Position, data.Position))
	}
	s.noteChanged()
	return added
}

// RemoveNotes removes the notes at positions. The response holds every
// removed note plus the first and last remaining neighbors of the removed
// notes, which bound the span that must be standardized and re-rendered.
// Positions without a note are skipped.
func (s *Song) RemoveNotes(positions []int) model.MutateResponse {
	res := model.MutateResponse{Notes: []model.NoteUpdateData{}}
	if len(positions) == 0 {
		s.logger.Warn("remove notes called on empty collection")
		return res
	}

	removing := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		removing[p] = struct{}{}
	}
	firstNeighbor := math.MaxInt
	lastNeighbor := math.MinInt
	consider := func(neighbor int) {
		if _, ok := removing[neighbor]; ok {
			return
		}
		firstNeighbor = min(firstNeighbor, neighbor)
		lastNeighbor = max(lastNeighbor, neighbor)
	}

	sorted := append([]int(nil), positions...)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for _, position := range sorted {
		removal, err := s.noteList.Remove(position)
		if err != nil {
			s.logger.Warn("cannot remove note", "position", position, "err", err)
			continue
		}
		s.pitchbends.RemovePitchbends(position, removal.Note.pitchbend)
		res.Notes = append(res.Notes, removal.Note.UpdateData(position))
		if removal.HasPrev {
			consider(removal.PrevPosition)
		}
		if removal.HasNext {
			consider(removal.NextPosition)
		}
	}
	s.noteChanged()

	if lastNeighbor >= firstNeighbor {
		if first, ok := s.noteList.Lookup(firstNeighbor); ok {
			data := s.noteList.Note(first).UpdateData(firstNeighbor)
			res.Prev = &data
		}
		if last, ok := s.noteList.Lookup(lastNeighbor); ok {
			data := s.noteList.Note(last).UpdateData(lastNeighbor)
			res.Next = &data
		}
	}
	return res
}

// ModifyNote replaces the envelope and pitch bend of the note at
// data.Position when data supplies them. Position, lyric and duration stay.
func (s *Song) ModifyNote(data model.NoteData) (model.NoteUpdateData, error) {
	id, ok := s.noteList.Lookup(data.Position)
	if !ok {
		return model.NoteUpdateData{}, fmt.Errorf("modify note at %d: %w", data.Position, ErrNotFound)
	}
	note := s.noteList.Note(id)
	if data.Envelope != nil {
		note.envelope = data.Envelope.Clone()
	}
	if data.Pitchbend != nil {
		s.pitchbends.RemovePitchbends(data.Position, note.pitchbend)
		note.pitchbend = data.Pitchbend.Clone()
		s.pitchbends.AddPitchbends(data.Position, note.pitchbend, s.prevNoteNum(id), note.noteNum)
	}
	s.noteList.update(id, note)
	s.noteChanged()
	return note.UpdateData(data.Position), nil
}

func (s *Song) standardizeNode(id NodeID) Note {
	var prev, next *Note
	if p, ok := s.noteList.Prev(id); ok {
		n := s.noteList.Note(p)
		prev = &n
	}
	if nx, ok := s.noteList.Next(id); ok {
		n := s.noteList.Note(nx)
		next = &n
	}
	note := s.standardizer.Standardize(prev, s.noteList.Note(id), next, s.resolver())
	s.noteList.update(id, note)
	return note
}

// StandardizeNotes re-resolves the notes from firstPosition to lastPosition
// plus one neighbor on each side, and rebuilds their pitch bends. Updated
// notes come back in position order. The outer neighbors come back as Prev
// and Next. Positions and deltas never change.
func (s *Song) StandardizeNotes(firstPosition, lastPosition int) (model.MutateResponse, error) {
	res := model.MutateResponse{Notes: []model.NoteUpdateData{}}

	cur, ok := s.noteList.Lookup(lastPosition)
	if !ok {
		s.logger.Warn("could not find last note when standardizing notes", "position", lastPosition)
		return res, fmt.Errorf("standardize notes at %d: %w", lastPosition, ErrNotFound)
	}

	// Include the next neighbor of the last note, if present.
	startPosition := lastPosition
	hasNextNeighbor := false
	if next, ok := s.noteList.Next(cur); ok {
		cur = next
		startPosition = s.noteList.Position(next)
		hasNextNeighbor = true
	}

	var updated []model.NoteUpdateData
	for cur != NoNode {
		position := s.noteList.Position(cur)
		oldBend := s.noteList.Note(cur).pitchbend
		note := s.standardizeNode(cur)

		s.pitchbends.RemovePitchbends(position, oldBend)
		s.pitchbends.AddPitchbends(position, note.pitchbend, s.prevNoteNum(cur), note.noteNum)

		data := note.UpdateData(position)
		if hasNextNeighbor && position == startPosition {
			res.Next = &data
		} else {
			updated = append(updated, data)
		}

		prev, ok := s.noteList.Prev(cur)
		if !ok {
			cur = NoNode
			break
		}
		cur = prev
		if s.noteList.Position(cur) < firstPosition {
			break
		}
	}

	// The previous neighbor's pitch bend does not depend on the run.
	if cur != NoNode {
		note := s.standardizeNode(cur)
		data := note.UpdateData(s.noteList.Position(cur))
		res.Prev = &data
	}

	for i := len(updated) - 1; i >= 0; i-- {
		res.Notes = append(res.Notes, updated[i])
	}
	s.noteChanged()
	return res, nil
}

// StandardizeAll standardizes every note in the song.
func (s *Song) StandardizeAll() {
	for cur := s.noteList.head; cur != NoNode; cur = s.noteList.at(cur).next {
		position := s.noteList.Position(cur)
		oldBend := s.noteList.Note(cur).pitchbend
		note := s.standardizeNode(cur)
		s.pitchbends.RemovePitchbends(position, oldBend)
		s.pitchbends.AddPitchbends(position, note.pitchbend, s.prevNoteNum(cur), note.noteNum)
	}
	s.noteChanged()
}

// Notes returns every note in position order.
func (s *Song) Notes() []model.NoteData {
	notes := make([]model.NoteData, 0, s.noteList.Len())
	for position, note := range s.noteList.All() {
		notes = append(notes, note.Data(position))
	}
	return notes
}

// NotesIn returns the notes positioned inside region.
func (s *Song) NotesIn(region model.RegionBounds) []model.NoteData {
	var notes []model.NoteData
	for position, note := range s.noteList.Bounded(region) {
		notes = append(notes, note.Data(position))
	}
	return notes
}

func (s *Song) Note(position int) (Note, bool) {
	id, ok := s.noteList.Lookup(position)
	if !ok {
		return Note{}, false
	}
	return s.noteList.Note(id), true
}

func (s *Song) NextNote(position int) (int, bool) {
	id, ok := s.noteList.Lookup(position)
	if !ok {
		return 0, false
	}
	next, ok := s.noteList.Next(id)
	if !ok {
		return 0, false
	}
	return s.noteList.Position(next), true
}

func (s *Song) PrevNote(position int) (int, bool) {
	id, ok := s.noteList.Lookup(position)
	if !ok {
		return 0, false
	}
	prev, ok := s.noteList.Prev(id)
	if !ok {
		return 0, false
	}
	return s.noteList.Position(prev), true
}

// Region spans the first to the last note position, or is invalid for an
// empty song.
func (s *Song) Region() model.RegionBounds {
	head, ok := s.noteList.Head()
	if !ok {
		return model.InvalidRegion
	}
	tail, _ := s.noteList.Tail()
	return model.NewRegion(s.noteList.Position(head), s.noteList.Position(tail))
}

func (s *Song) NumNotes() int {
	return s.noteList.Len()
}

// PitchString renders the pitch curve from firstStep to lastStep relative
// to noteNum.
func (s *Song) PitchString(firstStep, lastStep, noteNum int) string {
	return s.pitchbends.Render(firstStep, lastStep, noteNum)
}

// NotePitchString renders the pitch curve a resampler needs for the note at
// position: from its preutterance to the end of its length.
func (s *Song) NotePitchString(position int) (string, error) {
	note, ok := s.Note(position)
	if !ok {
		return "", fmt.Errorf("render note at %d: %w", position, ErrNotFound)
	}
	firstStep := pitch.StepOf(position - int(math.Ceil(note.realPreutter)))
	lastStep := pitch.StepOf(position + note.length)
	return s.pitchbends.Render(firstStep, lastStep, note.noteNum), nil
}

func (s *Song) SetRendered(region model.RegionBounds) {
	s.lastRenderedRegion = region
}

func (s *Song) LastRenderedRegion() model.RegionBounds {
	return s.lastRenderedRegion
}

func (s *Song) Voicebank() *voicebank.Voicebank { return s.voicebank }
func (s *Song) Tempo() float64                  { return s.tempo }
func (s *Song) ProjectName() string             { return s.projectName }
func (s *Song) OutputFile() string              { return s.outputFile }
func (s *Song) Flags() string                   { return s.flags }
func (s *Song) Mode2() bool                     { return s.mode2 }

// Instrumental is the path of the backing track, if any.
func (s *Song) Instrumental() (string, bool) {
	return s.instrumental, s.instrumental != ""
}

func (s *Song) VoiceDir() string {
	if s.voicebank == nil {
		return ""
	}
	return s.voicebank.Location()
}
