package capture

import "github.com/okian/penrisk/internal/domain/model"

// SourceKind identifies the active input device family.
type SourceKind string

// Supported input sources.
const (
	SourcePen   SourceKind = "pen"
	SourceTouch SourceKind = "touch"
	SourceMouse SourceKind = "mouse"
)

// Capabilities is a static property of an input source. It never affects
// the feature math, only what a source is able to report.
type Capabilities struct {
	Pressure bool `json:"pressure"`
	Tilt     bool `json:"tilt"`
	Rotation bool `json:"rotation"`
	Hover    bool `json:"hover"`
	Eraser   bool `json:"eraser"`
}

// CapabilitiesOf returns the capabilities of a source kind.
func CapabilitiesOf(kind SourceKind) Capabilities {
	switch kind {
	case SourcePen:
		return Capabilities{Pressure: true, Tilt: true, Rotation: true, Hover: true, Eraser: true}
	case SourceTouch:
		return Capabilities{Pressure: true}
	default:
		return Capabilities{Hover: true}
	}
}

// RawInput is a pointer, touch, or mouse sample as delivered by a host.
type RawInput struct {
	Kind      SourceKind `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Pressure  float64    `json:"pressure"`
	Timestamp uint64     `json:"timestamp"`
	TiltX     *float64   `json:"tiltX,omitempty"`
	TiltY     *float64   `json:"tiltY,omitempty"`
	Rotation  *float64   `json:"rotation,omitempty"`
	Eraser    bool       `json:"eraser,omitempty"`
}

// FromRaw converts a raw sample into a canonical point. Sources without
// pressure capability report the fallback pressure; tilt and rotation are
// dropped when the source cannot report them.
func FromRaw(in RawInput) model.Point {
	caps := CapabilitiesOf(in.Kind)
	p := model.Point{
		X:         in.X,
		Y:         in.Y,
		Pressure:  in.Pressure,
		Timestamp: in.Timestamp,
	}
	if !caps.Pressure {
		p.Pressure = fallbackPressure
	}
	if caps.Tilt {
		p.TiltX, p.TiltY = in.TiltX, in.TiltY
	}
	if caps.Rotation {
		p.Rotation = in.Rotation
	}
	return p
}

// ToolOf reports which tool a raw sample belongs to.
func ToolOf(in RawInput) model.Tool {
	switch {
	case in.Eraser && CapabilitiesOf(in.Kind).Eraser:
		return model.ToolEraser
	case in.Kind == SourcePen || in.Kind == SourceTouch || in.Kind == SourceMouse:
		return model.ToolPen
	default:
		return model.ToolUnknown
	}
}
