// Package midi moves vocal lines between standard MIDI files and songs.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ReadMidiFile reads and parses the SMF at path.
func ReadMidiFile(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read midi file: %w", err)
	}
	return Parse(bytes.NewReader(dat))
}

// Parse reads an SMF from r.
func Parse(r io.Reader) (s *smf.SMF, e error) {
	// The parser panics on some malformed files.
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		switch v := recover().(type) {
		case nil:
		case string:
			s, e = nil, errors.New(v)
		case error:
			s, e = nil, v
		default:
			s, e = nil, fmt.Errorf("parse midi: %v", v)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parse midi file: %w", err)
	}
	return res, nil
}
