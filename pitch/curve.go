// Package pitch accumulates the pitch bends of a song's notes on a fixed
// 5ms grid and renders spans of that grid into the two-character encoding
// resamplers read.
package pitch

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/util"
)

// Longest span in ms one pitch bend may start before its note or cover.
const maxBendMs = 60_000

// Curve maps pitch steps to the portamentos covering them. A step is only
// present while at least one portamento covers it.
type Curve struct {
	steps  map[int]*pitchbend
	logger *slog.Logger
}

func NewCurve() *Curve {
	return &Curve{
		steps:  make(map[int]*pitchbend),
		logger: slog.Default(),
	}
}

func (c *Curve) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// NumSteps returns how many pitch steps currently hold a portamento.
func (c *Curve) NumSteps() int {
	return len(c.steps)
}

// AddPitchbends registers the pitch bend of the note starting at
// noteStartMs. Bends start at prevNoteNum and end relative to curNoteNum.
func (c *Curve) AddPitchbends(noteStartMs int, data model.PitchbendData, prevNoteNum, curNoteNum int) {
	if !c.usable(noteStartMs, data) {
		return
	}
	startMs := float64(noteStartMs) + data.PBS[0]
	pitchStart := float64(prevNoteNum * 10)

	for i, width := range data.PBW {
		endMs := startMs + width
		pitchEnd := float64(curNoteNum*10) + util.At(data.PBY, i, 0)
		shape := util.At(data.PBM, i, "")
		portamento := NewPortamento(float64(noteStartMs), startMs, pitchStart, endMs, pitchEnd, shape)

		for step := NextStep(startMs); step <= PrevStep(endMs); step++ {
			pb, ok := c.steps[step]
			if !ok {
				pb = &pitchbend{}
				c.steps[step] = pb
			}
			pb.add(portamento)
		}
		startMs = endMs
		pitchStart = pitchEnd
	}
}

// RemovePitchbends undoes AddPitchbends for the same note and data. Widths
// are never negative, so the segments added cover exactly PBS[0] to
// PBS[0]+sum(PBW).
func (c *Curve) RemovePitchbends(noteStartMs int, data model.PitchbendData) {
	if !c.usable(noteStartMs, data) {
		return
	}
	startMs := float64(noteStartMs) + data.PBS[0]
	endMs := startMs
	for _, width := range data.PBW {
		endMs += width
	}
	for step := NextStep(startMs); step <= PrevStep(endMs); step++ {
		pb, ok := c.steps[step]
		if !ok {
			continue
		}
		pb.remove(float64(noteStartMs))
		if pb.isEmpty() {
			delete(c.steps, step)
		}
	}
}

// usable reports whether data can be laid on the grid, logging why not.
// Add and remove reject the same data so they stay inverses.
func (c *Curve) usable(noteStartMs int, data model.PitchbendData) bool {
	if !data.HasPitchbend() {
		c.logger.Debug("ignoring note without pitch bend data", "note_start", noteStartMs)
		return false
	}
	if err := checkBend(data); err != nil {
		c.logger.Debug("ignoring malformed pitch bend", "note_start", noteStartMs, "err", err)
		return false
	}
	return true
}

func checkBend(data model.PitchbendData) error {
	if start := data.PBS[0]; !isFinite(start) || math.Abs(start) > maxBendMs {
		return fmt.Errorf("bad start %v", start)
	}
	total := 0.0
	for i, width := range data.PBW {
		if !isFinite(width) || width < 0 {
			return fmt.Errorf("bad width %v", width)
		}
		if y := util.At(data.PBY, i, 0); !isFinite(y) {
			return fmt.Errorf("bad offset %v", y)
		}
		total += width
	}
	if total > maxBendMs {
		return fmt.Errorf("spans %vms", total)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Render writes steps firstStep through lastStep relative to noteNum. Every
// step becomes one token except runs of uncovered steps, which become one
// token followed by a #n# repeat marker.
func (c *Curve) Render(firstStep, lastStep, noteNum int) string {
	var sb strings.Builder
	noteNumPitch := float64(noteNum * 10)

	defaultPitch := 0.0
	for step := firstStep; step <= lastStep; step++ {
		if pb, ok := c.steps[step]; ok {
			if portamento, ok := pb.active(); ok {
				defaultPitch = portamento.StartPitch
				break
			}
		}
	}

	for step := firstStep; step <= lastStep; step++ {
		if pb, ok := c.steps[step]; ok {
			portamento, _ := pb.active()
			realPitch := portamento.Apply(float64(step * constants.PitchStepMs))
			sb.WriteString(Encode12Bit(toCents(realPitch - noteNumPitch)))
			defaultPitch = portamento.EndPitch
			continue
		}

		numEmpty := 0
		emptyStep := step
		for ; emptyStep <= lastStep; emptyStep++ {
			if _, ok := c.steps[emptyStep]; ok {
				break
			}
			numEmpty++
		}
		sb.WriteString(Encode12Bit(toCents(defaultPitch - noteNumPitch)))
		if numEmpty > 1 {
			fmt.Fprintf(&sb, "#%d#", numEmpty-1)
		}
		step = emptyStep - 1
	}
	return sb.String()
}

func toCents(tenths float64) int {
	return int(math.Round(tenths * 10))
}

// NextStep is the first pitch step at or after positionMs.
func NextStep(positionMs float64) int {
	return int(math.Ceil(positionMs / constants.PitchStepMs))
}

// PrevStep is the last pitch step before positionMs. It never equals
// NextStep for the same position.
func PrevStep(positionMs float64) int {
	prev := int(math.Floor(positionMs / constants.PitchStepMs))
	if prev == NextStep(positionMs) {
		return prev - 1
	}
	return prev
}

// StepOf is the pitch step containing positionMs.
func StepOf(positionMs int) int {
	return int(math.Floor(float64(positionMs) / constants.PitchStepMs))
}
