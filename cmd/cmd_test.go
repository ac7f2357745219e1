package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/reader"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVoicebank(t *testing.T) *reader.Reader {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "vb")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oto.ini"), []byte("a.wav=a,0,0,0,60,20\nka.wav=- ka,0,0,0,100,30\n"), 0644))
	return reader.New(dir, "")
}

const testProject = `
name: test
notes:
  - {position: 0, duration: 100, pitch: C4, lyric: ka}
  - {position: 100, duration: 480, pitch: C4, lyric: ka, pitchbend: {pbs: [-10], pbw: [20]}}
  - {position: 580, duration: 480, pitch: C4, lyric: zzz}
`

func TestLoadSongAndReport(t *testing.T) {
	assert := assert.New(t)
	r := writeVoicebank(t)
	path := filepath.Join(t.TempDir(), "song.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testProject), 0644))

	s, err := loadSong(r, newManager(r), path, "")
	require.NoError(t, err)
	assert.Equal(r.DefaultPath(), s.VoiceDir())

	report := analyzeSong(s)
	assert.Equal(3, report.numNotes)
	assert.Equal(0, report.firstPosition)
	assert.Equal(580, report.lastPosition)
	// Without a conversion table no vowel is read from "ka", so both notes
	// sing "- ka". zzz does not resolve.
	assert.Equal(1, report.numUnresolved)
	assert.Equal(1, report.numBent)
	assert.Equal(1, report.numPreutterFits)

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(out.String(), "report.totalDuration: 1060ms")

	rendered := renderNotes(s)
	require.Len(t, rendered, 3)
	assert.Equal("- ka", rendered[0].TrueLyric)
	assert.Equal(100.0, rendered[0].RealPreutter)
	assert.Equal("zzz", rendered[2].TrueLyric)
	for _, n := range rendered {
		assert.NotEmpty(n.Pitch)
	}
}

func TestListVoicebanks(t *testing.T) {
	r := writeVoicebank(t)
	var out bytes.Buffer
	require.NoError(t, listVoicebanks(&out, filepath.Dir(r.DefaultPath())))
	assert.Equal(t, "0\t"+r.DefaultPath()+"\n", out.String())
}

func TestInspect(t *testing.T) {
	r := writeVoicebank(t)
	vb, err := r.LoadVoicebank(r.DefaultPath())
	require.NoError(t, err)
	var out bytes.Buffer
	inspect(&out, vb)
	assert.Contains(t, out.String(), "lyrics: 2")
	assert.Contains(t, out.String(), "- ka\tka.wav")
}

func TestProjectsRenderAfterEdits(t *testing.T) {
	assert := assert.New(t)
	r := writeVoicebank(t)
	ps := NewProjects(voicebank.NewManager(r, r.DefaultPath()))
	ps.delay = 10 * time.Millisecond

	id, err := ps.Create("", "", 0)
	require.NoError(t, err)
	require.NoError(t, ps.with(id, func(p *project) error {
		p.song.AddNotes([]model.NoteData{{Position: 0, Duration: 480, Pitch: "C4", Lyric: "a"}})
		p.edited()
		return nil
	}))

	rendered := func() bool {
		var ok bool
		_ = ps.with(id, func(p *project) error {
			ok = p.song.LastRenderedRegion().IsValid() && len(p.rendered) == 1
			return nil
		})
		return ok
	}
	assert.Eventually(rendered, time.Second, 5*time.Millisecond)

	assert.ErrorIs(ps.with("missing", func(*project) error { return nil }), errNoProject)
	assert.True(ps.Close(id))
	assert.False(ps.Close(id))
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.NoError(t, setupLogging("warn"))
	assert.Error(t, setupLogging("loud"))
}

func TestRemoveRespondsWithRemovedNotes(t *testing.T) {
	assert := assert.New(t)
	r := writeVoicebank(t)
	ps := NewProjects(voicebank.NewManager(r, r.DefaultPath()))
	handler := NewServer(ps).Handler()
	id, err := ps.Create("", "", 0)
	require.NoError(t, err)
	require.NoError(t, ps.with(id, func(p *project) error {
		p.song.AddNotes([]model.NoteData{
			{Position: 0, Duration: 480, Pitch: "C4", Lyric: "a"},
			{Position: 480, Duration: 480, Pitch: "C4", Lyric: "ka"},
			{Position: 960, Duration: 480, Pitch: "C4", Lyric: "a"},
		})
		return nil
	}))

	remove := func(positions ...int) model.MutateResponse {
		body, err := json.Marshal(model.RemoveNotesRequestBody{Positions: positions})
		require.NoError(t, err)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/projects/"+id+"/notes", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)
		var res model.MutateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		return res
	}

	res := remove(480)
	require.Len(t, res.Removed, 1)
	assert.Equal(480, res.Removed[0].Position)
	assert.Equal("ka", res.Removed[0].TrueLyric)
	assert.Len(res.Notes, 2)

	// One neighbor left: it still bounds the span to standardize.
	res = remove(0)
	require.Len(t, res.Removed, 1)
	assert.Equal(0, res.Removed[0].Position)
	assert.Len(res.Notes, 1)

	res = remove(960)
	assert.Empty(res.Notes)
	require.Len(t, res.Removed, 1)
	assert.Equal(960, res.Removed[0].Position)
}
