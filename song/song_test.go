package song

import (
	"testing"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/pitch"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVoicebank(t *testing.T) *voicebank.Voicebank {
	t.Helper()
	b := voicebank.New().ToBuilder().SetLocation("/vb").SetName("test")
	for _, c := range []struct {
		alias  string
		file   string
		values []string
	}{
		{"a", "a.wav", []string{"0", "0", "0", "60", "20"}},
		{"- ka", "ka.wav", []string{"0", "0", "0", "100", "30"}},
		{"a ka", "a_ka.wav", []string{"0", "0", "0", "80", "10"}},
	} {
		config, err := voicebank.NewLyricConfig("/vb", "/vb/"+c.file, c.alias, c.values)
		require.NoError(t, err)
		b.AddLyric(config, false)
	}
	b.AddConversionGroup("a", "あ")
	b.AddConversionGroup("ka", "か")
	return b.Build()
}

func noteData(position, duration int, pitchName, lyric string) model.NoteData {
	return model.NoteData{Position: position, Duration: duration, Pitch: pitchName, Lyric: lyric}
}

func positionsOf(notes []model.NoteUpdateData) []int {
	var res []int
	for _, n := range notes {
		res = append(res, n.Position)
	}
	return res
}

func fiveNoteSong(t *testing.T) *Song {
	s := New(testVoicebank(t))
	var notes []model.NoteData
	for _, p := range []int{0, 480, 960, 1440, 1920} {
		notes = append(notes, noteData(p, 480, "C4", "a"))
	}
	s.AddNotes(notes)
	return s
}

func TestAddNotesSkipsBadNotes(t *testing.T) {
	assert := assert.New(t)
	s := New(testVoicebank(t))
	region := s.AddNotes([]model.NoteData{
		noteData(480, 480, "C4", "a"),
		noteData(0, 480, "C4", "a"),
		noteData(480, 100, "D4", "dup"),
		noteData(960, 480, "H9", "bad"),
	})
	assert.Equal(model.NewRegion(0, 480), region)
	assert.Equal(2, s.NumNotes())

	n, ok := s.Note(480)
	require.True(t, ok)
	assert.Equal("a", n.Lyric())
	assert.Equal(480, n.Delta())

	assert.False(s.AddNotes(nil).IsValid())
}

func TestRemoveNotesReturnsOuterNeighbors(t *testing.T) {
	assert := assert.New(t)
	s := fiveNoteSong(t)

	res := s.RemoveNotes([]int{960, 480, 480})
	assert.Equal([]int{480, 960}, positionsOf(res.Notes))
	require.NotNil(t, res.Prev)
	require.NotNil(t, res.Next)
	assert.Equal(0, res.Prev.Position)
	assert.Equal(1440, res.Next.Position)

	n, ok := s.Note(1440)
	require.True(t, ok)
	assert.Equal(1440, n.Delta())
	assert.Equal(3, s.NumNotes())
}

func TestRemoveFirstNoteUsesNextForBothNeighbors(t *testing.T) {
	s := fiveNoteSong(t)
	res := s.RemoveNotes([]int{0})
	require.NotNil(t, res.Prev)
	require.NotNil(t, res.Next)
	assert.Equal(t, 480, res.Prev.Position)
	assert.Equal(t, 480, res.Next.Position)
}

func TestRemoveMissingNotes(t *testing.T) {
	assert := assert.New(t)
	s := fiveNoteSong(t)
	res := s.RemoveNotes([]int{5})
	assert.Empty(res.Notes)
	assert.Nil(res.Prev)
	assert.Nil(res.Next)
	assert.Equal(5, s.NumNotes())

	res = s.RemoveNotes([]int{0, 480, 960, 1440, 1920})
	assert.Len(res.Notes, 5)
	assert.Nil(res.Prev)
	assert.Nil(res.Next)
	assert.Equal(0, s.NumNotes())
}

func TestStandardizeResolvesLyrics(t *testing.T) {
	assert := assert.New(t)
	s := New(testVoicebank(t))
	s.AddNotes([]model.NoteData{
		noteData(0, 600, "C4", "a"),
		noteData(480, 480, "C4", "ka"),
		noteData(960, 480, "C4", "か"),
	})

	res, err := s.StandardizeNotes(0, 960)
	require.NoError(t, err)
	assert.Nil(res.Prev)
	assert.Nil(res.Next)
	require.Len(t, res.Notes, 3)

	first, second, third := res.Notes[0], res.Notes[1], res.Notes[2]
	assert.Equal(0, first.Position)
	assert.Equal(480, first.Length)
	assert.Equal("a", first.TrueLyric)
	assert.Equal(60.0, first.RealPreutter)
	assert.Equal(20.0, first.RealOverlap)

	assert.Equal("a ka", second.TrueLyric)
	assert.Equal(80.0, second.RealPreutter)
	assert.Equal(10.0, second.RealOverlap)

	// "か" is found through its phonetic group.
	assert.Equal("a ka", third.TrueLyric)
	assert.Equal(480, third.Length)

	// Positions and deltas are untouched.
	sum := 0
	for _, p := range []int{0, 480, 960} {
		n, ok := s.Note(p)
		require.True(t, ok)
		sum += n.Delta()
		assert.Equal(p, sum)
	}
}

func TestStandardizeIncludesNeighbors(t *testing.T) {
	assert := assert.New(t)
	s := New(testVoicebank(t))
	s.AddNotes([]model.NoteData{
		noteData(0, 480, "C4", "a"),
		noteData(480, 480, "C4", "ka"),
		noteData(960, 480, "C4", "ka"),
	})

	res, err := s.StandardizeNotes(480, 480)
	require.NoError(t, err)
	assert.Equal([]int{480}, positionsOf(res.Notes))
	require.NotNil(t, res.Prev)
	require.NotNil(t, res.Next)
	assert.Equal(0, res.Prev.Position)
	assert.Equal(960, res.Next.Position)
	assert.Equal("a ka", res.Next.TrueLyric)

	_, err = s.StandardizeNotes(0, 123)
	assert.ErrorIs(err, ErrNotFound)
}

func TestStandardizeWithoutPrevUsesDash(t *testing.T) {
	s := New(testVoicebank(t))
	s.AddNotes([]model.NoteData{noteData(0, 480, "C4", "ka")})
	res, err := s.StandardizeNotes(0, 0)
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "- ka", res.Notes[0].TrueLyric)
	assert.Equal(t, 100.0, res.Notes[0].RealPreutter)
}

func TestStandardizeFitsIntoShortPrevNote(t *testing.T) {
	assert := assert.New(t)
	s := New(testVoicebank(t))
	s.AddNotes([]model.NoteData{
		noteData(0, 100, "C4", "a"),
		noteData(100, 480, "C4", "ka"),
	})
	s.StandardizeAll()

	n, ok := s.Note(100)
	require.True(t, ok)
	// 80 - 10 exceeds half of the 100ms previous note, so both shrink.
	assert.InDelta(80.0*50/70, n.RealPreutter(), 1e-9)
	assert.InDelta(10.0*50/70, n.RealOverlap(), 1e-9)
}

func TestStandardizeKeepsUserOverrides(t *testing.T) {
	preutter, overlap := 30.0, 5.0
	s := New(testVoicebank(t))
	data := noteData(0, 480, "C4", "a")
	data.Config = &model.NoteConfigData{Preutter: &preutter, Overlap: &overlap}
	s.AddNotes([]model.NoteData{data})
	s.StandardizeAll()

	n, _ := s.Note(0)
	assert.Equal(t, 30.0, n.RealPreutter())
	assert.Equal(t, 5.0, n.RealOverlap())
}

func TestUnresolvedLyricFallsBack(t *testing.T) {
	s := New(testVoicebank(t))
	s.AddNotes([]model.NoteData{noteData(0, 480, "C4", "zzz")})
	s.StandardizeAll()
	n, _ := s.Note(0)
	assert.Equal(t, "zzz", n.TrueLyric())
	assert.Equal(t, 0.0, n.RealPreutter())
}

func TestModifyNote(t *testing.T) {
	assert := assert.New(t)
	s := fiveNoteSong(t)
	assert.Equal(0, s.pitchbends.NumSteps())

	_, err := s.ModifyNote(model.NoteData{Position: 7})
	assert.ErrorIs(err, ErrNotFound)

	update, err := s.ModifyNote(model.NoteData{
		Position: 480,
		Lyric:    "ignored",
		Envelope: &model.EnvelopeData{Widths: []float64{0, 5}, Heights: []float64{100, 100}},
		Pitchbend: &model.PitchbendData{
			PBS: []float64{-20},
			PBW: []float64{40},
		},
	})
	require.NoError(t, err)
	assert.Equal(480, update.Position)
	assert.Equal([]float64{0, 5}, update.Envelope.Widths)
	assert.Greater(s.pitchbends.NumSteps(), 0)

	n, _ := s.Note(480)
	assert.Equal("a", n.Lyric())
	assert.Equal(480, n.Delta())

	// Removing the note takes its pitch bend with it.
	s.RemoveNotes([]int{480})
	assert.Equal(0, s.pitchbends.NumSteps())
}

func TestPitchStringFromNotes(t *testing.T) {
	s := New(nil)
	s.AddNotes([]model.NoteData{
		noteData(0, 100, "C4", "a"),
		{
			Position:  100,
			Duration:  100,
			Pitch:     "D4",
			Lyric:     "a",
			Pitchbend: &model.PitchbendData{PBS: []float64{-10}, PBW: []float64{20}, PBM: []string{"s"}},
		},
	})
	assert.Equal(t, "84#1#849q+c/OAA#2#", s.PitchString(16, 24, 62))
}

func TestNotePitchStringCoversPreutterance(t *testing.T) {
	preutter := 12.5
	s := New(nil)
	data := noteData(100, 20, "C4", "a")
	data.Config = &model.NoteConfigData{Preutter: &preutter}
	s.AddNotes([]model.NoteData{data})
	s.StandardizeAll()

	rendered, err := s.NotePitchString(100)
	require.NoError(t, err)
	values, err := pitch.DecodePitchString(rendered)
	require.NoError(t, err)
	// Steps 17 (87ms) through 24 (120ms).
	assert.Len(t, values, 8)

	_, err = s.NotePitchString(0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenderedRegionResetsOnChange(t *testing.T) {
	s := fiveNoteSong(t)
	s.SetRendered(model.NewRegion(0, 1920))
	assert.True(t, s.LastRenderedRegion().IsValid())
	s.RemoveNotes([]int{0})
	assert.False(t, s.LastRenderedRegion().IsValid())
	assert.False(t, s.LastRenderedRegion().Intersects(s.Region()))
}

func TestRegion(t *testing.T) {
	assert := assert.New(t)
	s := New(testVoicebank(t))
	assert.False(s.Region().IsValid())

	s = fiveNoteSong(t)
	assert.Equal(model.NewRegion(0, 1920), s.Region())
	s.RemoveNotes([]int{1920})
	assert.Equal(model.NewRegion(0, 1440), s.Region())
	assert.True(s.Region().Intersects(model.NewRegion(1440, 3000)))
	assert.False(s.Region().Intersects(model.NewRegion(1441, 3000)))
	assert.True(s.Region().Contains(0))
	assert.False(s.Region().Contains(-1))
}

func TestNeighborLookups(t *testing.T) {
	assert := assert.New(t)
	s := fiveNoteSong(t)
	next, ok := s.NextNote(480)
	assert.True(ok)
	assert.Equal(960, next)
	prev, ok := s.PrevNote(480)
	assert.True(ok)
	assert.Equal(0, prev)
	_, ok = s.PrevNote(0)
	assert.False(ok)
	_, ok = s.NextNote(1920)
	assert.False(ok)
	_, ok = s.NextNote(1)
	assert.False(ok)

	assert.Len(s.NotesIn(model.NewRegion(400, 1000)), 2)
	assert.Len(s.Notes(), 5)
}

func TestBuilder(t *testing.T) {
	assert := assert.New(t)
	orig := New(testVoicebank(t))
	b := orig.ToBuilder().
		SetTempo(300).
		SetProjectName("song").
		SetFlags("g-5")
	require.NoError(t, b.AddNote(0, noteData(0, 480, "C4", "a")))
	b.AddRestNote(480)
	require.NoError(t, b.AddNote(480, noteData(0, 480, "C4", "ka")))
	require.NoError(t, b.AddNote(480, noteData(0, 480, "C4", "ka")))
	assert.ErrorIs(b.AddNote(0, noteData(0, 480, "C4", "a")), ErrDuplicatePosition)
	assert.ErrorIs(b.AddNote(10, noteData(0, 480, "X", "a")), ErrInvalidPitch)
	s := b.Build()

	assert.Equal(constants.DefaultTempo, s.Tempo())
	assert.Equal("song", s.ProjectName())
	assert.Equal("g-5", s.Flags())
	assert.True(s.Mode2())
	_, ok := s.Instrumental()
	assert.False(ok)
	assert.Equal("/vb", s.VoiceDir())

	var positions []int
	for _, n := range s.Notes() {
		positions = append(positions, n.Position)
	}
	assert.Equal([]int{0, 960, 1440}, positions)

	n, _ := s.Note(960)
	assert.Equal(960, n.Delta())
	// The rest does not count as a previous lyric.
	assert.Equal("a ka", n.TrueLyric())

	// The builder shares its notes with the song it came from.
	assert.Equal(3, orig.NumNotes())
	assert.Equal(constants.DefaultProjectName, orig.ProjectName())

	s2 := s.ToBuilder().SetTempo(90).Build()
	assert.Equal(90.0, s2.Tempo())
	assert.Equal("song", s2.ProjectName())
}
