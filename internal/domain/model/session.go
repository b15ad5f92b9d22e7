// Package model contains domain models passed between layers.
package model

// Point is one canonical input sample. Immutable once recorded.
type Point struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Pressure  float64  `json:"pressure"`  // normalized, 0..1
	Timestamp uint64   `json:"timestamp"` // milliseconds
	TiltX     *float64 `json:"tiltX,omitempty"`
	TiltY     *float64 `json:"tiltY,omitempty"`
	Rotation  *float64 `json:"rotation,omitempty"`
}

// Tool identifies what produced a stroke.
type Tool string

// Supported tools.
const (
	ToolPen     Tool = "pen"
	ToolEraser  Tool = "eraser"
	ToolUnknown Tool = "unknown"
)

// Stroke is one continuous contact-to-release gesture.
// A sealed stroke is never mutated; share it by value.
type Stroke struct {
	ID        string  `json:"id"`
	Tool      Tool    `json:"tool"`
	Points    []Point `json:"points"`
	StartTime uint64  `json:"startTime"`
	EndTime   uint64  `json:"endTime"`
}

// Duration returns end-start, clamped at zero.
func (s Stroke) Duration() uint64 {
	if s.EndTime < s.StartTime {
		return 0
	}
	return s.EndTime - s.StartTime
}

// Clone returns a deep copy of the stroke.
func (s Stroke) Clone() Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	s.Points = pts
	return s
}

// CanvasSize is the drawing surface in pixels.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width*height, zero for degenerate canvases.
func (c CanvasSize) Area() float64 {
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}
	return c.Width * c.Height
}

// Session is an ordered set of sealed strokes captured for one task.
type Session struct {
	ID          string     `json:"id"`
	TestType    string     `json:"testType,omitempty"`
	CreatedAt   int64      `json:"createdAt,omitempty"`
	Strokes     []Stroke   `json:"strokes"`
	Canvas      CanvasSize `json:"canvasSize"`
	TotalTimeMS uint64     `json:"totalTime"`
}

// Points returns all points of all strokes in capture order.
func (s Session) Points() []Point {
	n := 0
	for _, st := range s.Strokes {
		n += len(st.Points)
	}
	out := make([]Point, 0, n)
	for _, st := range s.Strokes {
		out = append(out, st.Points...)
	}
	return out
}

// PointCount returns the total number of points.
func (s Session) PointCount() int {
	n := 0
	for _, st := range s.Strokes {
		n += len(st.Points)
	}
	return n
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	strokes := make([]Stroke, len(s.Strokes))
	for i, st := range s.Strokes {
		strokes[i] = st.Clone()
	}
	s.Strokes = strokes
	return s
}
