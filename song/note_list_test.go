package song

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jsphweid/utsu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNote(t *testing.T, duration int, pitchName, lyric string) Note {
	t.Helper()
	n, err := NewNote(model.NoteData{Duration: duration, Pitch: pitchName, Lyric: lyric})
	require.NoError(t, err)
	return n
}

type placed struct {
	position int
	delta    int
	lyric    string
}

func snapshot(l *NoteList) []placed {
	var res []placed
	for position, note := range l.All() {
		res = append(res, placed{position: position, delta: note.Delta(), lyric: note.Lyric()})
	}
	return res
}

func TestInsertKeepsOrderAndDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	positions := rng.Perm(200)
	l := NewNoteList()
	hint := NoNode
	for i, p := range positions {
		id, err := l.InsertFrom(mustNote(t, 10, "C4", fmt.Sprint(i)), p*10, hint)
		require.NoError(t, err)
		if i%3 == 0 {
			hint = id
		}
	}

	assert := assert.New(t)
	assert.Equal(200, l.Len())
	sum := 0
	last := -1
	for position, note := range l.All() {
		assert.Greater(position, last)
		sum += note.Delta()
		assert.Equal(position, sum)
		last = position
	}
}

func TestInsertDuplicateLeavesListUnchanged(t *testing.T) {
	l := NewNoteList()
	for _, p := range []int{0, 480, 960} {
		_, err := l.Insert(mustNote(t, 480, "C4", "a"), p)
		require.NoError(t, err)
	}
	before := snapshot(l)

	_, err := l.Insert(mustNote(t, 100, "D4", "x"), 480)
	assert.ErrorIs(t, err, ErrDuplicatePosition)
	assert.Equal(t, before, snapshot(l))
	assert.Equal(t, 3, l.Len())
}

func TestInsertBetweenAdjustsSuccessor(t *testing.T) {
	assert := assert.New(t)
	l := NewNoteList()
	first, _ := l.Insert(mustNote(t, 480, "C4", "a"), 100)
	_, _ = l.Insert(mustNote(t, 480, "C4", "c"), 1000)
	_, err := l.InsertFrom(mustNote(t, 480, "C4", "b"), 400, first)
	require.NoError(t, err)

	assert.Equal([]placed{
		{position: 100, delta: 100, lyric: "a"},
		{position: 400, delta: 300, lyric: "b"},
		{position: 1000, delta: 600, lyric: "c"},
	}, snapshot(l))
}

func TestHintDoesNotChangeResult(t *testing.T) {
	build := func(useHint bool) []placed {
		l := NewNoteList()
		far, _ := l.Insert(mustNote(t, 10, "C4", "far"), 5000)
		for _, p := range []int{300, 100, 4000, 200, 6000, 0} {
			hint := NoNode
			if useHint {
				hint = far
			}
			_, err := l.InsertFrom(mustNote(t, 10, "C4", fmt.Sprint(p)), p, hint)
			require.NoError(t, err)
		}
		return snapshot(l)
	}
	assert.Equal(t, build(false), build(true))
}

func TestStaleHintIsIgnored(t *testing.T) {
	l := NewNoteList()
	id, _ := l.Insert(mustNote(t, 10, "C4", "a"), 50)
	_, err := l.Remove(50)
	require.NoError(t, err)

	_, err = l.InsertFrom(mustNote(t, 10, "C4", "b"), 20, id)
	require.NoError(t, err)
	_, err = l.InsertFrom(mustNote(t, 10, "C4", "c"), 10, NodeID(99))
	require.NoError(t, err)
	assert.Equal(t, []placed{
		{position: 10, delta: 10, lyric: "c"},
		{position: 20, delta: 10, lyric: "b"},
	}, snapshot(l))
}

func TestRemoveReportsNeighbors(t *testing.T) {
	assert := assert.New(t)
	l := NewNoteList()
	for _, p := range []int{0, 480, 960} {
		_, err := l.Insert(mustNote(t, 480, "C4", fmt.Sprint(p)), p)
		require.NoError(t, err)
	}

	removal, err := l.Remove(480)
	require.NoError(t, err)
	assert.Equal("480", removal.Note.Lyric())
	assert.True(removal.HasPrev)
	assert.Equal(0, removal.PrevPosition)
	assert.True(removal.HasNext)
	assert.Equal(960, removal.NextPosition)
	assert.Equal([]placed{
		{position: 0, delta: 0, lyric: "0"},
		{position: 960, delta: 960, lyric: "960"},
	}, snapshot(l))

	removal, err = l.Remove(0)
	require.NoError(t, err)
	assert.False(removal.HasPrev)
	assert.True(removal.HasNext)
	assert.Equal([]placed{{position: 960, delta: 960, lyric: "960"}}, snapshot(l))

	removal, err = l.Remove(960)
	require.NoError(t, err)
	assert.False(removal.HasPrev)
	assert.False(removal.HasNext)
	assert.Equal(0, l.Len())
	_, ok := l.Head()
	assert.False(ok)
	_, ok = l.Tail()
	assert.False(ok)

	_, err = l.Remove(960)
	assert.ErrorIs(err, ErrNotFound)
}

func TestLookupIsExact(t *testing.T) {
	l := NewNoteList()
	id, _ := l.Insert(mustNote(t, 480, "C4", "a"), 480)
	found, ok := l.Lookup(480)
	assert.True(t, ok)
	assert.Equal(t, id, found)
	_, ok = l.Lookup(479)
	assert.False(t, ok)
}

func TestRemovedIdsAreReused(t *testing.T) {
	l := NewNoteList()
	_, _ = l.Insert(mustNote(t, 10, "C4", "a"), 0)
	id, _ := l.Insert(mustNote(t, 10, "C4", "b"), 10)
	_, _ = l.Remove(10)
	reused, _ := l.Insert(mustNote(t, 10, "C4", "c"), 20)
	assert.Equal(t, id, reused)
	assert.Len(t, l.nodes, 2)
}

func TestBoundedIteration(t *testing.T) {
	assert := assert.New(t)
	l := NewNoteList()
	for _, p := range []int{0, 100, 200, 300, 400} {
		_, _ = l.Insert(mustNote(t, 100, "C4", fmt.Sprint(p)), p)
	}

	collect := func(region model.RegionBounds) []int {
		var res []int
		for position := range l.Bounded(region) {
			res = append(res, position)
		}
		return res
	}
	region := model.NewRegion(100, 300)
	assert.Equal([]int{100, 200, 300}, collect(region))
	// Ranging again yields the same notes.
	assert.Equal([]int{100, 200, 300}, collect(region))
	assert.Equal([]int{200}, collect(model.NewRegion(150, 250)))
	assert.Nil(collect(model.NewRegion(401, 900)))
	assert.Nil(collect(model.InvalidRegion))

	var first []int
	for position := range l.Bounded(model.NewRegion(0, 400)) {
		first = append(first, position)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal([]int{0, 100}, first)
}
