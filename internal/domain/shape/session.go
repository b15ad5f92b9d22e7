package shape

import (
	"fmt"

	"github.com/okian/penrisk/internal/domain/model"
)

// Requirements are the minimums a session must meet before it is assessed.
type Requirements struct {
	MinStrokes    int     `koanf:"min_strokes"`
	MinDurationMS uint64  `koanf:"min_duration_ms"`
	MinCanvas     float64 `koanf:"min_canvas"` // shortest canvas side, px
}

// DefaultRequirements only insists on a single stroke.
func DefaultRequirements() Requirements {
	return Requirements{MinStrokes: 1}
}

// CheckSession returns nil when s satisfies req, otherwise a ValidationError
// listing every unmet requirement. A session with no strokes never passes.
func CheckSession(s model.Session, req Requirements) *ValidationError {
	var reasons []string
	minStrokes := max(req.MinStrokes, 1)
	switch {
	case len(s.Strokes) == 0:
		reasons = append(reasons, "no strokes captured")
	case len(s.Strokes) < minStrokes:
		reasons = append(reasons, fmt.Sprintf("need at least %d strokes, got %d", minStrokes, len(s.Strokes)))
	}
	if i, j, ok := pressureOutOfRange(s); ok {
		reasons = append(reasons, fmt.Sprintf("stroke %d point %d has pressure outside [0,1]", i, j))
	}
	if req.MinDurationMS > 0 {
		if d := elapsed(s); d < req.MinDurationMS {
			reasons = append(reasons, fmt.Sprintf("drawing time %dms is below the %dms minimum", d, req.MinDurationMS))
		}
	}
	if req.MinCanvas > 0 {
		if side := min(s.Canvas.Width, s.Canvas.Height); side < req.MinCanvas {
			reasons = append(reasons, fmt.Sprintf("canvas %gx%g is smaller than %gpx", s.Canvas.Width, s.Canvas.Height, req.MinCanvas))
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}

// elapsed prefers the recorded task time and falls back to the span of the
// strokes themselves.
func elapsed(s model.Session) uint64 {
	if s.TotalTimeMS > 0 {
		return s.TotalTimeMS
	}
	if len(s.Strokes) == 0 {
		return 0
	}
	first, last := s.Strokes[0].StartTime, s.Strokes[len(s.Strokes)-1].EndTime
	if last < first {
		return 0
	}
	return last - first
}

// pressureOutOfRange finds the first point whose pressure is not in [0,1].
func pressureOutOfRange(s model.Session) (int, int, bool) {
	for i, st := range s.Strokes {
		for j, p := range st.Points {
			if !(p.Pressure >= 0 && p.Pressure <= 1) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
