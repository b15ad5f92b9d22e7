package features

import (
	"math"

	"github.com/okian/penrisk/internal/domain/model"
)

// cornerAngle is the turning angle above which a vertex counts as a corner.
const cornerAngle = math.Pi / 4

// Extract computes the full feature vector for a sealed session. It is a
// pure function: the same session always yields the same vector.
func Extract(s model.Session) model.FeatureVector {
	fv := make(model.FeatureVector, len(allKeys))
	for _, k := range allKeys {
		fv[k] = 0
	}
	kinematics(fv, s.Strokes)
	curvature(fv, s.Strokes)
	timing(fv, s.Strokes)
	pressure(fv, s.Strokes)
	spatial(fv, s)
	fv[StrokeCount] = float64(len(s.Strokes))
	fv[PointCount] = float64(s.PointCount())
	fv[TotalTimeMS] = float64(s.TotalTimeMS)
	return fv.Sanitize()
}

func dist(a, b model.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// dtMS returns the positive time step between two points, at least 1ms.
func dtMS(a, b model.Point) float64 {
	return math.Max(1, float64(int64(b.Timestamp)-int64(a.Timestamp)))
}

// kinematics fills velocity, acceleration, jerk, and path length. Derivatives
// never span stroke boundaries.
func kinematics(fv model.FeatureVector, strokes []model.Stroke) {
	var velocities, accelerations, jerks, segments []float64
	for _, st := range strokes {
		pts := st.Points
		if len(pts) < 2 {
			continue
		}
		v := make([]float64, 0, len(pts)-1)
		for i := 1; i < len(pts); i++ {
			d := dist(pts[i-1], pts[i])
			segments = append(segments, d)
			v = append(v, d/dtMS(pts[i-1], pts[i]))
		}
		velocities = append(velocities, v...)

		a := make([]float64, 0, len(v))
		for i := 1; i < len(v); i++ {
			a = append(a, (v[i]-v[i-1])/dtMS(pts[i], pts[i+1]))
		}
		accelerations = append(accelerations, a...)

		for i := 1; i < len(a); i++ {
			jerks = append(jerks, (a[i]-a[i-1])/dtMS(pts[i+1], pts[i+2]))
		}
	}

	vs := summarize(velocities)
	as := summarize(accelerations)
	js := summarize(jerks)
	ps := summarize(segments)
	fv[VelocityMean] = vs.mean
	fv[VelocityStd] = vs.std
	fv[VelocityMax] = vs.max
	fv[AccelerationMean] = as.mean
	fv[AccelerationStd] = as.std
	fv[JerkMean] = js.mean
	fv[JerkStd] = js.std
	fv[PathLengthPx] = ps.sum
	fv[PathLengthMean] = ps.mean
}

// curvature fills turning-angle statistics over interior points.
func curvature(fv model.FeatureVector, strokes []model.Stroke) {
	var angles []float64
	corners := 0
	for _, st := range strokes {
		pts := st.Points
		for i := 1; i+1 < len(pts); i++ {
			ax, ay := pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y
			bx, by := pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y
			na, nb := math.Hypot(ax, ay), math.Hypot(bx, by)
			if na == 0 || nb == 0 {
				continue
			}
			cos := (ax*bx + ay*by) / (na * nb)
			angle := math.Acos(math.Max(-1, math.Min(1, cos)))
			angles = append(angles, angle)
			if angle > cornerAngle {
				corners++
			}
		}
	}
	cs := summarize(angles)
	fv[CurvatureMean] = cs.mean
	fv[CurvatureStd] = cs.std
	fv[CornerCount] = float64(corners)
}

// timing fills stroke duration and inter-stroke pause statistics.
func timing(fv model.FeatureVector, strokes []model.Stroke) {
	durations := make([]float64, 0, len(strokes))
	var pauses []float64
	for i, st := range strokes {
		durations = append(durations, float64(st.Duration()))
		if i == 0 {
			continue
		}
		pause := int64(st.StartTime) - int64(strokes[i-1].EndTime)
		pauses = append(pauses, math.Max(0, float64(pause)))
	}
	ds := summarize(durations)
	ps := summarize(pauses)
	fv[StrokeDurationMeanMS] = ds.mean
	fv[StrokeDurationStdMS] = ds.std
	fv[StrokeDurationMaxMS] = ds.max
	fv[InterStrokePauseMeanMS] = ps.mean
	fv[InterStrokePauseStdMS] = ps.std
	fv[InterStrokePauseMaxMS] = ps.max
	fv[TotalPauseMS] = ps.sum
}

// pressure fills statistics over every point's pressure.
func pressure(fv model.FeatureVector, strokes []model.Stroke) {
	var ps []float64
	for _, st := range strokes {
		for _, p := range st.Points {
			ps = append(ps, p.Pressure)
		}
	}
	s := summarize(ps)
	fv[PressureMean] = s.mean
	fv[PressureStd] = s.std
	fv[PressureMin] = s.min
	fv[PressureMax] = s.max
	fv[PressureRange] = s.max - s.min
	fv[PressureCV] = safeDiv(s.std, s.mean)
}

// spatial fills bounding-box and centre-of-mass features.
func spatial(fv model.FeatureVector, s model.Session) {
	pts := s.Points()
	if len(pts) == 0 {
		return
	}
	b := Bounds(pts)
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))
	ox := math.Abs(cx - s.Canvas.Width/2)
	oy := math.Abs(cy - s.Canvas.Height/2)

	fv[BBoxWidth] = b.Width()
	fv[BBoxHeight] = b.Height()
	fv[BBoxArea] = b.Area()
	fv[CanvasCoverage] = safeDiv(b.Area(), s.Canvas.Area())
	fv[CenterOffsetX] = ox
	fv[CenterOffsetY] = oy
	fv[CenterOffsetTotal] = math.Hypot(ox, oy)
}
