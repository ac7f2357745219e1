// Package voicebank models a UTAU voicebank: its aliases and their timing
// values, its pitch map and the phonetic groups used to match lyrics typed
// in a different script.
package voicebank

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Voicebank is read-mostly once built and may be shared by many songs.
type Voicebank struct {
	lyricConfigs  *LyricConfigMap
	pitchMap      *PitchMap
	conversionSet *DisjointLyricSet
	soundFiles    map[string]struct{}

	location    string
	name        string
	author      string
	description string
	imageName   string
}

// LyricConfigData is a config as shown in a voicebank editor.
type LyricConfigData struct {
	Lyric    string     `json:"lyric"`
	FileName string     `json:"file_name"`
	Values   [5]float64 `json:"values"`
	HasFrq   bool       `json:"has_frq"`
}

type Builder struct {
	vb *Voicebank
}

func New() *Voicebank {
	return &Voicebank{
		lyricConfigs:  NewLyricConfigMap(),
		pitchMap:      NewPitchMap(),
		conversionSet: NewDisjointLyricSet(),
		soundFiles:    make(map[string]struct{}),
	}
}

// ToBuilder returns a builder for a new voicebank with the same settings.
// The lyric configs, pitch map and conversion set are shared, not copied.
func (v *Voicebank) ToBuilder() *Builder {
	nv := &Voicebank{
		lyricConfigs:  v.lyricConfigs,
		pitchMap:      v.pitchMap,
		conversionSet: v.conversionSet,
		soundFiles:    v.soundFiles,
	}
	return (&Builder{vb: nv}).
		SetLocation(v.location).
		SetName(v.name).
		SetAuthor(v.author).
		SetDescription(v.description).
		SetImageName(v.imageName)
}

func (b *Builder) SetLocation(location string) *Builder {
	b.vb.location = location
	return b
}

func (b *Builder) SetName(name string) *Builder {
	b.vb.name = name
	return b
}

func (b *Builder) SetAuthor(author string) *Builder {
	b.vb.author = author
	return b
}

func (b *Builder) SetDescription(description string) *Builder {
	b.vb.description = description
	return b
}

func (b *Builder) SetImageName(imageName string) *Builder {
	b.vb.imageName = imageName
	return b
}

// AddLyric adds config. hasFrq records that a frequency map exists for its
// sample. A later config reusing an alias is dropped.
func (b *Builder) AddLyric(config LyricConfig, hasFrq bool) *Builder {
	b.vb.lyricConfigs.Add(config)
	if hasFrq {
		b.vb.soundFiles[config.PathToFile] = struct{}{}
	}
	return b
}

func (b *Builder) AddPitchMap(pitch, prefix, suffix string) *Builder {
	b.vb.pitchMap.Put(pitch, prefix, suffix)
	return b
}

func (b *Builder) AddConversionGroup(members ...string) *Builder {
	b.vb.conversionSet.AddGroup(members...)
	return b
}

func (b *Builder) Build() *Voicebank {
	if b.vb.location == "" {
		slog.Warn("building a voicebank without a location")
	}
	return b.vb
}

func (v *Voicebank) Location() string    { return v.location }
func (v *Voicebank) Name() string        { return v.name }
func (v *Voicebank) Author() string      { return v.author }
func (v *Voicebank) Description() string { return v.description }
func (v *Voicebank) ImageName() string   { return v.imageName }

func (v *Voicebank) ImagePath() string {
	if v.imageName == "" {
		return ""
	}
	return filepath.Join(v.location, v.imageName)
}

func (v *Voicebank) LookupConfig(alias string) (LyricConfig, bool) {
	return v.lyricConfigs.Get(alias)
}

func (v *Voicebank) HasConfig(alias string) bool {
	return v.lyricConfigs.Has(alias)
}

func (v *Voicebank) PitchSuffix(pitch string) string {
	return v.pitchMap.Suffix(pitch)
}

func (v *Voicebank) PhoneticGroup(token string) []string {
	return v.conversionSet.Group(token)
}

// LyricConfig resolves lyric sung after prevLyric at pitch. See Resolver.
func (v *Voicebank) LyricConfig(prevLyric, lyric, pitch string) (LyricConfig, bool) {
	return NewResolver(v).Resolve(prevLyric, lyric, pitch)
}

func (v *Voicebank) NumLyrics() int {
	return v.lyricConfigs.Len()
}

// Categories lists the sub-folders holding samples, "" being the root.
func (v *Voicebank) Categories() []string {
	return v.lyricConfigs.Categories()
}

func (v *Voicebank) LyricConfigs(category string) []LyricConfig {
	return v.lyricConfigs.Configs(category)
}

func (v *Voicebank) LyricData(category string) []LyricConfigData {
	configs := v.lyricConfigs.Configs(category)
	res := make([]LyricConfigData, 0, len(configs))
	for _, c := range configs {
		_, hasFrq := v.soundFiles[c.PathToFile]
		res = append(res, LyricConfigData{
			Lyric:    c.TrueLyric,
			FileName: c.FileName(),
			Values:   c.Values(),
			HasFrq:   hasFrq,
		})
	}
	return res
}

func (v *Voicebank) configFromData(data LyricConfigData) LyricConfig {
	vals := data.Values
	return LyricConfig{
		PathToVoicebank: v.location,
		PathToFile:      filepath.Join(v.location, filepath.FromSlash(data.FileName)),
		TrueLyric:       data.Lyric,
		Offset:          vals[0],
		Consonant:       vals[1],
		Cutoff:          vals[2],
		Preutter:        vals[3],
		Overlap:         vals[4],
	}
}

// AddLyricData adds a new alias. It reports false if the alias exists.
func (v *Voicebank) AddLyricData(data LyricConfigData) bool {
	if v.HasConfig(data.Lyric) {
		return false
	}
	return v.lyricConfigs.Add(v.configFromData(data))
}

func (v *Voicebank) ModifyLyricData(data LyricConfigData) {
	v.lyricConfigs.Set(v.configFromData(data))
}

func (v *Voicebank) RemoveLyricConfig(alias string) {
	v.lyricConfigs.Remove(alias)
}

func (v *Voicebank) PitchData() []PitchMapData {
	return v.pitchMap.Data()
}

func (v *Voicebank) SetPitchData(data PitchMapData) {
	v.pitchMap.Put(data.Pitch, data.Prefix, data.Suffix)
}

func (v *Voicebank) String() string {
	parts := []string{v.location, v.name, v.imageName}
	return fmt.Sprintf("Voicebank(%s)", strings.Join(parts, " "))
}
