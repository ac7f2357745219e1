package voicebank

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LyricConfig is one alias of a voicebank: a sample file plus the oto.ini
// timing values that go with it. Values are in ms.
type LyricConfig struct {
	PathToVoicebank string
	PathToFile      string
	TrueLyric       string
	Offset          float64
	Consonant       float64
	Cutoff          float64
	Preutter        float64
	Overlap         float64
}

// NewLyricConfig parses the five oto.ini values that follow an alias:
// offset, consonant, cutoff, preutterance and overlap. Empty values are 0.
func NewLyricConfig(pathToVoicebank, pathToFile, trueLyric string, values []string) (LyricConfig, error) {
	if len(values) != 5 {
		return LyricConfig{}, fmt.Errorf("lyric %q: expected 5 config values, got %d", trueLyric, len(values))
	}
	var parsed [5]float64
	for i, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return LyricConfig{}, fmt.Errorf("lyric %q: config value %d: %w", trueLyric, i, err)
		}
		parsed[i] = v
	}
	return LyricConfig{
		PathToVoicebank: pathToVoicebank,
		PathToFile:      pathToFile,
		TrueLyric:       trueLyric,
		Offset:          parsed[0],
		Consonant:       parsed[1],
		Cutoff:          parsed[2],
		Preutter:        parsed[3],
		Overlap:         parsed[4],
	}, nil
}

// FileName is the sample path relative to the voicebank root.
func (c LyricConfig) FileName() string {
	rel, err := filepath.Rel(c.PathToVoicebank, c.PathToFile)
	if err != nil {
		return filepath.Base(c.PathToFile)
	}
	return filepath.ToSlash(rel)
}

// Category is the sub-folder of the voicebank holding the sample, or "".
func (c LyricConfig) Category() string {
	dir := filepath.ToSlash(filepath.Dir(c.FileName()))
	if dir == "." {
		return ""
	}
	return dir
}

func (c LyricConfig) Values() [5]float64 {
	return [5]float64{c.Offset, c.Consonant, c.Cutoff, c.Preutter, c.Overlap}
}

// Compare orders configs by alias, then by sample file.
func (c LyricConfig) Compare(other LyricConfig) int {
	if c.TrueLyric != other.TrueLyric {
		if c.TrueLyric < other.TrueLyric {
			return -1
		}
		return 1
	}
	if c.PathToFile != other.PathToFile {
		if c.PathToFile < other.PathToFile {
			return -1
		}
		return 1
	}
	return 0
}

// LyricConfigMap stores configs by exact, case-sensitive alias.
type LyricConfigMap struct {
	configs map[string]LyricConfig
}

func NewLyricConfigMap() *LyricConfigMap {
	return &LyricConfigMap{configs: make(map[string]LyricConfig)}
}

// Add stores config unless its alias is already taken.
func (m *LyricConfigMap) Add(config LyricConfig) bool {
	if _, ok := m.configs[config.TrueLyric]; ok {
		return false
	}
	m.configs[config.TrueLyric] = config
	return true
}

func (m *LyricConfigMap) Set(config LyricConfig) {
	m.configs[config.TrueLyric] = config
}

func (m *LyricConfigMap) Remove(alias string) {
	delete(m.configs, alias)
}

func (m *LyricConfigMap) Has(alias string) bool {
	_, ok := m.configs[alias]
	return ok
}

func (m *LyricConfigMap) Get(alias string) (LyricConfig, bool) {
	c, ok := m.configs[alias]
	return c, ok
}

func (m *LyricConfigMap) Len() int {
	return len(m.configs)
}

func (m *LyricConfigMap) Categories() []string {
	set := make(map[string]struct{})
	for _, c := range m.configs {
		set[c.Category()] = struct{}{}
	}
	categories := maps.Keys(set)
	slices.Sort(categories)
	return categories
}

// Configs returns the configs of one category in Compare order.
func (m *LyricConfigMap) Configs(category string) []LyricConfig {
	var res []LyricConfig
	for _, c := range m.configs {
		if c.Category() == category {
			res = append(res, c)
		}
	}
	slices.SortFunc(res, func(a, b LyricConfig) bool {
		return a.Compare(b) < 0
	})
	return res
}
