package pitch

import "math"

// Shape selects how a portamento moves between its two pitches.
type Shape string

const (
	ShapeS      Shape = ""
	ShapeLinear Shape = "s"
	ShapeR      Shape = "r"
	ShapeJ      Shape = "j"
)

// ease maps progress t in [0, 1] to the fraction of the pitch distance covered.
func (s Shape) ease(t float64) float64 {
	switch s {
	case ShapeLinear:
		return t
	case ShapeR:
		return math.Sin(t * math.Pi / 2)
	case ShapeJ:
		return 1 - math.Cos(t*math.Pi/2)
	default:
		return (1 - math.Cos(t*math.Pi)) / 2
	}
}

// Portamento is one pitch glide segment. Pitches are in tenths of a
// semitone and times are absolute song positions in ms.
type Portamento struct {
	AnchorMs   float64
	StartMs    float64
	StartPitch float64
	EndMs      float64
	EndPitch   float64
	Shape      Shape
}

func NewPortamento(anchorMs, startMs, startPitch, endMs, endPitch float64, shape string) Portamento {
	return Portamento{
		AnchorMs:   anchorMs,
		StartMs:    startMs,
		StartPitch: startPitch,
		EndMs:      endMs,
		EndPitch:   endPitch,
		Shape:      Shape(shape),
	}
}

// Apply interpolates the pitch at positionMs. Positions outside the span
// hold the nearest end pitch.
func (p Portamento) Apply(positionMs float64) float64 {
	if positionMs >= p.EndMs {
		return p.EndPitch
	}
	if positionMs <= p.StartMs {
		return p.StartPitch
	}
	t := (positionMs - p.StartMs) / (p.EndMs - p.StartMs)
	return p.StartPitch + (p.EndPitch-p.StartPitch)*p.Shape.ease(t)
}

// pitchbend is the stack of portamentos covering one pitch step. The most
// recently added one is active.
type pitchbend struct {
	portamentos []Portamento
}

func (pb *pitchbend) add(p Portamento) {
	pb.portamentos = append(pb.portamentos, p)
}

// remove drops the newest portamento anchored at anchorMs.
func (pb *pitchbend) remove(anchorMs float64) bool {
	for i := len(pb.portamentos) - 1; i >= 0; i-- {
		if pb.portamentos[i].AnchorMs == anchorMs {
			pb.portamentos = append(pb.portamentos[:i], pb.portamentos[i+1:]...)
			return true
		}
	}
	return false
}

func (pb *pitchbend) isEmpty() bool {
	return len(pb.portamentos) == 0
}

func (pb *pitchbend) active() (Portamento, bool) {
	if pb.isEmpty() {
		return Portamento{}, false
	}
	return pb.portamentos[len(pb.portamentos)-1], true
}
