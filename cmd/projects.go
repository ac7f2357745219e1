package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/song"
	"github.com/jsphweid/utsu/voicebank"
)

var errNoProject = errors.New("no such project")

// How long a project must go without edits before its notes are rendered.
const renderDelay = 300 * time.Millisecond

// project is one open song. mu serializes every use of the song.
type project struct {
	mu       sync.Mutex
	song     *song.Song
	rendered []model.RenderedNote
	debounce func(f func())
}

// rerender refreshes the rendered notes unless they are current. Every
// edit invalidates the rendered region. Callers hold p.mu.
func (p *project) rerender() {
	region := p.song.Region()
	if p.song.LastRenderedRegion().Intersects(region) {
		return
	}
	p.rendered = renderNotes(p.song)
	p.song.SetRendered(region)
}

// edited schedules a render once edits stop arriving.
func (p *project) edited() {
	p.debounce(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.rerender()
	})
}

// Projects holds the songs open in the server.
type Projects struct {
	mu       sync.Mutex
	projects map[string]*project
	manager  *voicebank.Manager
	delay    time.Duration
	logger   *slog.Logger
}

func NewProjects(manager *voicebank.Manager) *Projects {
	return &Projects{
		projects: make(map[string]*project),
		manager:  manager,
		delay:    renderDelay,
		logger:   slog.Default(),
	}
}

// Create opens a new empty song sung by the voicebank at location, or by
// the default voicebank when location is empty.
func (ps *Projects) Create(location, name string, tempo float64) (string, error) {
	var vb *voicebank.Voicebank
	var err error
	if location == "" {
		vb, err = ps.manager.Default()
	} else {
		vb, err = ps.manager.Get(location, false)
	}
	if err != nil {
		return "", fmt.Errorf("open voicebank: %w", err)
	}

	b := song.New(vb).ToBuilder()
	if name != "" {
		b.SetProjectName(name)
	}
	if tempo != 0 {
		b.SetTempo(tempo)
	}
	s := b.Build()
	s.SetLogger(ps.logger)

	id := uuid.New().String()
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.projects[id] = &project{song: s, debounce: debounce.New(ps.delay)}
	ps.logger.Info("opened project", "id", id, "voicebank", vb.Location())
	return id, nil
}

// with runs f on the project id while holding its lock.
func (ps *Projects) with(id string, f func(p *project) error) error {
	ps.mu.Lock()
	p, ok := ps.projects[id]
	ps.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, errNoProject)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return f(p)
}

func (ps *Projects) Close(id string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, ok := ps.projects[id]
	delete(ps.projects, id)
	return ok
}
