// Package shape scores a drawing against the reference geometry a task asked
// for, and checks whether a session is complete enough to assess.
package shape

import (
	"math"

	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
)

const (
	minCirclePoints = 8
	minSpiralPoints = 8
	minLinePoints   = 2

	sectors = 36

	// circle
	expectedRadiusRatio = 0.35
	noteThreshold       = 60

	// line
	expectedLineRatio = 0.7

	// spiral
	expectedTurns = 3

	// fallback
	coverageFactor   = 250
	fallbackAccuracy = 0.8
)

// Diagnostic notes.
const (
	NoteInsufficientPoints = "insufficient points"
	NoteInvalidCanvas      = "invalid canvas"
	NoteLowCoverage        = "incomplete shape: low angular coverage"
	NoteRadiusOff          = "radius deviates from the expected size"
	NoteNotRound           = "shape is not round"
	NoteNotStraight        = "line is not straight"
	NoteTooShort           = "line is too short"
	NoteFewTurns           = "spiral has too few turns"
	NoteNotMonotonic       = "spiral radius is not monotonic"
	NoteApproximate        = "approximate validation"
)

// Validate scores the strokes against cfg. Circle, line, and spiral have
// dedicated algorithms; every other shape uses a bounding-box coverage
// heuristic.
func Validate(cfg model.ReferenceShapeConfig, strokes []model.Stroke, canvas model.CanvasSize) model.ValidationResult {
	switch cfg.Type {
	case model.ShapeCircle:
		return circle(strokes, canvas)
	case model.ShapeLine:
		return line(strokes, canvas)
	case model.ShapeSpiral:
		return spiral(strokes)
	default:
		return fallback(strokes, canvas)
	}
}

func flatten(strokes []model.Stroke) []model.Point {
	return model.Session{Strokes: strokes}.Points()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func insufficient() model.ValidationResult {
	return model.ValidationResult{Notes: []string{NoteInsufficientPoints}}
}

func circle(strokes []model.Stroke, canvas model.CanvasSize) model.ValidationResult {
	pts := flatten(strokes)
	if len(pts) < minCirclePoints {
		return insufficient()
	}
	box := features.Bounds(pts)
	cx, cy := box.Center()

	expected := math.Min(canvas.Width, canvas.Height) * expectedRadiusRatio
	var meanDist float64
	hit := make([]bool, sectors)
	for _, p := range pts {
		dx, dy := p.X-cx, p.Y-cy
		meanDist += math.Hypot(dx, dy)
		hit[sector(dx, dy)] = true
	}
	meanDist /= float64(len(pts))

	var radiusAccuracy float64
	if expected > 0 {
		radiusAccuracy = math.Max(0, 100-math.Abs(meanDist-expected)/expected*100)
	}

	n := 0
	for _, h := range hit {
		if h {
			n++
		}
	}
	coverage := float64(n) / sectors * 100

	var roundness float64
	if box.Width() > 0 {
		roundness = math.Max(0, 100-math.Abs(1-box.Height()/box.Width())*120)
	}

	res := model.ValidationResult{
		Completion: clamp(coverage, 0, 100),
		Accuracy:   clamp(radiusAccuracy*0.6+roundness*0.2+coverage*0.2, 0, 100),
		Notes:      []string{},
	}
	if expected <= 0 {
		res.Notes = append(res.Notes, NoteInvalidCanvas)
	}
	if coverage < noteThreshold {
		res.Notes = append(res.Notes, NoteLowCoverage)
	}
	if radiusAccuracy < noteThreshold {
		res.Notes = append(res.Notes, NoteRadiusOff)
	}
	if roundness < noteThreshold {
		res.Notes = append(res.Notes, NoteNotRound)
	}
	return res
}

// sector returns the ten-degree bucket of the direction (dx, dy).
func sector(dx, dy float64) int {
	a := math.Atan2(dy, dx)
	if a < 0 {
		a += 2 * math.Pi
	}
	i := int(a / (2 * math.Pi) * sectors)
	if i >= sectors {
		i = sectors - 1
	}
	return i
}

func line(strokes []model.Stroke, canvas model.CanvasSize) model.ValidationResult {
	pts := flatten(strokes)
	if len(pts) < minLinePoints {
		return insufficient()
	}
	var path float64
	for _, st := range strokes {
		for i := 1; i < len(st.Points); i++ {
			a, b := st.Points[i-1], st.Points[i]
			path += math.Hypot(b.X-a.X, b.Y-a.Y)
		}
	}
	first, last := pts[0], pts[len(pts)-1]
	span := math.Hypot(last.X-first.X, last.Y-first.Y)

	var straightness float64
	if path > 0 {
		straightness = clamp(span/path*100, 0, 100)
	}
	var length float64
	expected := math.Hypot(canvas.Width, canvas.Height) * expectedLineRatio
	if canvas.Area() > 0 {
		length = clamp(span/expected*100, 0, 100)
	}

	res := model.ValidationResult{
		Completion: length,
		Accuracy:   clamp(straightness*0.7+length*0.3, 0, 100),
		Notes:      []string{},
	}
	if canvas.Area() == 0 {
		res.Notes = append(res.Notes, NoteInvalidCanvas)
	}
	if straightness < noteThreshold {
		res.Notes = append(res.Notes, NoteNotStraight)
	}
	if length < noteThreshold {
		res.Notes = append(res.Notes, NoteTooShort)
	}
	return res
}

func spiral(strokes []model.Stroke) model.ValidationResult {
	pts := flatten(strokes)
	if len(pts) < minSpiralPoints {
		return insufficient()
	}
	cx, cy := features.Bounds(pts).Center()

	var total float64
	var outward, inward, steps int
	for i := 1; i < len(pts); i++ {
		a0 := math.Atan2(pts[i-1].Y-cy, pts[i-1].X-cx)
		a1 := math.Atan2(pts[i].Y-cy, pts[i].X-cx)
		d := a1 - a0
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d <= -math.Pi {
			d += 2 * math.Pi
		}
		total += d

		r0 := math.Hypot(pts[i-1].X-cx, pts[i-1].Y-cy)
		r1 := math.Hypot(pts[i].X-cx, pts[i].Y-cy)
		steps++
		if r1 >= r0 {
			outward++
		}
		if r1 <= r0 {
			inward++
		}
	}
	turns := math.Abs(total) / (2 * math.Pi)
	completion := clamp(turns/expectedTurns*100, 0, 100)
	accuracy := clamp(float64(max(outward, inward))/float64(steps)*100, 0, 100)

	res := model.ValidationResult{Completion: completion, Accuracy: accuracy, Notes: []string{}}
	if completion < noteThreshold {
		res.Notes = append(res.Notes, NoteFewTurns)
	}
	if accuracy < noteThreshold {
		res.Notes = append(res.Notes, NoteNotMonotonic)
	}
	return res
}

func fallback(strokes []model.Stroke, canvas model.CanvasSize) model.ValidationResult {
	pts := flatten(strokes)
	if len(pts) == 0 {
		return insufficient()
	}
	area := canvas.Area()
	if area == 0 {
		return model.ValidationResult{Notes: []string{NoteInvalidCanvas}}
	}
	completion := clamp(features.Bounds(pts).Area()/area*coverageFactor, 0, 100)
	return model.ValidationResult{
		Completion: completion,
		Accuracy:   completion * fallbackAccuracy,
		Notes:      []string{NoteApproximate},
	}
}
