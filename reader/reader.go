// Package reader loads voicebanks and projects from disk.
package reader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jsphweid/utsu/voicebank"
	"golang.org/x/text/encoding/japanese"
)

var ErrNotVoicebank = errors.New("not a voicebank directory")

var (
	lyricPattern = regexp.MustCompile(`(.+\.wav)=([^,]*),`)
	pitchPattern = regexp.MustCompile(`([a-gA-G]#?[1-7])\t(\S*)\t(\S.*)`)
)

var (
	otoNames      = []string{"oto.ini", "oto_ini.txt"}
	pitchMapNames = []string{"prefixmap", "prefix.map"}
)

// Nested oto files deeper than this are not read.
const maxOtoDepth = 10

// Reader loads voicebank directories. It implements voicebank.Loader.
type Reader struct {
	defaultPath         string
	lyricConversionPath string
	logger              *slog.Logger
}

func New(defaultPath, lyricConversionPath string) *Reader {
	return &Reader{
		defaultPath:         defaultPath,
		lyricConversionPath: lyricConversionPath,
		logger:              slog.Default(),
	}
}

func (r *Reader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

func (r *Reader) DefaultPath() string {
	return r.defaultPath
}

// IsVoicebank reports whether dir, or the directory holding the file dir,
// has an oto.ini or oto_ini.txt.
func IsVoicebank(dir string) bool {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range otoNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// LoadVoicebank reads the voicebank at dir. A path to a file inside the
// voicebank is accepted too.
func (r *Reader) LoadVoicebank(dir string) (*voicebank.Voicebank, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("load voicebank: %w", err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	if !IsVoicebank(dir) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotVoicebank)
	}

	b := voicebank.New().ToBuilder().SetLocation(dir)
	r.logger.Info("reading voicebank", "location", dir)

	name := filepath.Base(dir)
	for _, rawLine := range strings.Split(readConfigFile(filepath.Join(dir, "character.txt")), "\n") {
		line := strings.TrimSpace(rawLine)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "name="):
			name = line[len("name="):]
		case strings.HasPrefix(line, "名前："):
			name = line[len("名前："):]
		case strings.HasPrefix(lower, "author="):
			b.SetAuthor(line[len("author="):])
		case strings.HasPrefix(lower, "cv："):
			b.SetAuthor(line[len("cv："):])
		case strings.HasPrefix(line, "image="):
			b.SetImageName(line[len("image="):])
		case strings.HasPrefix(line, "画像："):
			b.SetImageName(line[len("画像："):])
		}
	}
	b.SetName(name)
	b.SetDescription(readConfigFile(filepath.Join(dir, "readme.txt")))

	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			if depth(dir, path) >= maxOtoDepth {
				return filepath.SkipDir
			}
			return nil
		}
		for _, otoName := range otoNames {
			if d.Name() == otoName {
				r.parseOtoIni(b, dir, filepath.Dir(path), otoName)
				break
			}
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, fmt.Errorf("walk voicebank %s: %w", dir, err)
	}

	for _, pitchMapName := range pitchMapNames {
		parsePitchMap(b, filepath.Join(dir, pitchMapName))
	}
	if r.lyricConversionPath != "" {
		for _, line := range strings.Split(readConfigFile(r.lyricConversionPath), "\n") {
			b.AddConversionGroup(strings.Split(strings.TrimSpace(line), ",")...)
		}
	}

	vb := b.Build()
	r.logger.Info("read voicebank", "name", name, "location", dir, "lyrics", vb.NumLyrics())
	return vb, nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func (r *Reader) parseOtoIni(b *voicebank.Builder, vbDir, otoDir, otoName string) {
	otoData := readConfigFile(filepath.Join(otoDir, otoName))
	for _, rawLine := range strings.Split(otoData, "\n") {
		line := strings.TrimSpace(rawLine)
		loc := lyricPattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		fileName := filepath.FromSlash(strings.ReplaceAll(line[loc[2]:loc[3]], `\`, "/"))
		alias := line[loc[4]:loc[5]]
		base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		if alias == "" {
			// Without an alias the sample is sung by its file name.
			alias = filepath.ToSlash(base)
		}
		values := strings.Split(line[loc[1]:], ",")
		config, err := voicebank.NewLyricConfig(vbDir, filepath.Join(otoDir, fileName), alias, values)
		if err != nil {
			r.logger.Warn("skipping malformed oto line", "file", filepath.Join(otoDir, otoName), "line", line, "err", err)
			continue
		}
		b.AddLyric(config, isFile(filepath.Join(otoDir, base+"_wav.frq")))
	}
}

func parsePitchMap(b *voicebank.Builder, path string) {
	for _, rawLine := range strings.Split(readConfigFile(path), "\n") {
		match := pitchPattern.FindStringSubmatch(strings.TrimSpace(rawLine))
		if match == nil {
			continue
		}
		b.AddPitchMap(strings.ToUpper(match[1]), match[2], match[3])
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// readConfigFile returns the text of path, or "" when it cannot be read.
// Missing config files are common in voicebanks.
func readConfigFile(path string) string {
	if !isFile(path) {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read config file", "path", path, "err", err)
		return ""
	}
	return decodeText(data)
}

// decodeText reads data as UTF-8, falling back to Shift-JIS, which most
// older voicebanks are written in.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ExpandPath replaces ${DEFAULT} with the default voicebank directory and
// ${HOME} with the user's home directory.
func (r *Reader) ExpandPath(path string) string {
	if abs, err := filepath.Abs(r.defaultPath); err == nil {
		path = strings.Replace(path, "${DEFAULT}", abs, 1)
	}
	if home, err := os.UserHomeDir(); err == nil {
		path = strings.Replace(path, "${HOME}", home, 1)
	}
	return path
}
