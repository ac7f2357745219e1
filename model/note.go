package model

// Envelope points as found in a UST note: Widths are p1..p5 in ms and
// Heights are v1..v5 in percent.
type EnvelopeData struct {
	Widths  []float64 `json:"widths" yaml:"widths"`
	Heights []float64 `json:"heights" yaml:"heights"`
}

// PitchbendData holds the mode2 pitch bend of a single note.
type PitchbendData struct {
	// Only the first value is used: ms before the note start where the bend begins.
	PBS []float64 `json:"pbs" yaml:"pbs"`
	// Segment widths in ms.
	PBW []float64 `json:"pbw" yaml:"pbw"`
	// Segment end offsets in tenths of a semitone, relative to the note.
	PBY []float64 `json:"pby,omitempty" yaml:"pby,omitempty"`
	// Segment shapes: "" (S curve), "s" (linear), "r" and "j".
	PBM []string `json:"pbm,omitempty" yaml:"pbm,omitempty"`
}

// HasPitchbend reports whether the data describes a pitch bend at all.
func (p PitchbendData) HasPitchbend() bool {
	return len(p.PBS) > 0 && len(p.PBW) > 0
}

func (p PitchbendData) Clone() PitchbendData {
	return PitchbendData{
		PBS: append([]float64(nil), p.PBS...),
		PBW: append([]float64(nil), p.PBW...),
		PBY: append([]float64(nil), p.PBY...),
		PBM: append([]string(nil), p.PBM...),
	}
}

func (e EnvelopeData) Clone() EnvelopeData {
	return EnvelopeData{
		Widths:  append([]float64(nil), e.Widths...),
		Heights: append([]float64(nil), e.Heights...),
	}
}

// NoteConfigData is what the resampler needs to know about a note besides
// its pitch curve. Preutter and Overlap come from the resolved lyric config
// unless the user overrides them.
type NoteConfigData struct {
	Preutter   *float64 `json:"preutter,omitempty" yaml:"preutter,omitempty"`
	Overlap    *float64 `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	StartPoint float64  `json:"start_point,omitempty" yaml:"start_point,omitempty"`
	Velocity   float64  `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Intensity  float64  `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Modulation float64  `json:"modulation,omitempty" yaml:"modulation,omitempty"`
	Flags      string   `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// NoteData is a note as the outside world sees it: placed by absolute
// position instead of by delta.
type NoteData struct {
	Position  int             `json:"position" yaml:"position"`
	Duration  int             `json:"duration" yaml:"duration"`
	Pitch     string          `json:"pitch" yaml:"pitch"`
	Lyric     string          `json:"lyric" yaml:"lyric"`
	TrueLyric string          `json:"true_lyric,omitempty" yaml:"true_lyric,omitempty"`
	Envelope  *EnvelopeData   `json:"envelope,omitempty" yaml:"envelope,omitempty"`
	Pitchbend *PitchbendData  `json:"pitchbend,omitempty" yaml:"pitchbend,omitempty"`
	Config    *NoteConfigData `json:"config,omitempty" yaml:"config,omitempty"`
}

// NoteUpdateData is everything a view needs to redraw a note after the
// engine touched it.
type NoteUpdateData struct {
	Position  int            `json:"position"`
	Length    int            `json:"length"`
	TrueLyric string         `json:"true_lyric"`
	Envelope  EnvelopeData   `json:"envelope"`
	Pitchbend PitchbendData  `json:"pitchbend"`
	Config    NoteConfigData `json:"config"`

	// Preutterance and overlap after fitting them to the previous note.
	RealPreutter float64 `json:"real_preutter"`
	RealOverlap  float64 `json:"real_overlap"`
}

// MutateResponse lists the notes a mutation changed plus the outer
// neighbors that must be re-rendered with them.
type MutateResponse struct {
	Notes []NoteUpdateData `json:"notes"`
	Prev  *NoteUpdateData  `json:"prev,omitempty"`
	Next  *NoteUpdateData  `json:"next,omitempty"`

	// Notes as they were before a removal, enough to add them back.
	Removed []NoteUpdateData `json:"removed,omitempty"`
}
