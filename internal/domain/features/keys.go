// Package features computes kinematic, curvature, timing, pressure, and
// spatial statistics from a sealed session.
package features

// Feature keys. Extraction always populates every one of them.
const (
	VelocityMean     = "velocity_mean"
	VelocityStd      = "velocity_std"
	VelocityMax      = "velocity_max"
	AccelerationMean = "acceleration_mean"
	AccelerationStd  = "acceleration_std"
	JerkMean         = "jerk_mean"
	JerkStd          = "jerk_std"
	PathLengthPx     = "path_length_px"
	PathLengthMean   = "path_length_mean"

	CurvatureMean = "curvature_mean"
	CurvatureStd  = "curvature_std"
	CornerCount   = "corner_count"

	StrokeDurationMeanMS   = "stroke_duration_mean_ms"
	StrokeDurationStdMS    = "stroke_duration_std_ms"
	StrokeDurationMaxMS    = "stroke_duration_max_ms"
	InterStrokePauseMeanMS = "inter_stroke_pause_mean_ms"
	InterStrokePauseStdMS  = "inter_stroke_pause_std_ms"
	InterStrokePauseMaxMS  = "inter_stroke_pause_max_ms"
	TotalPauseMS           = "total_pause_ms"

	PressureMean  = "pressure_mean"
	PressureStd   = "pressure_std"
	PressureMin   = "pressure_min"
	PressureMax   = "pressure_max"
	PressureRange = "pressure_range"
	PressureCV    = "pressure_cv"

	BBoxWidth         = "bbox_width"
	BBoxHeight        = "bbox_height"
	BBoxArea          = "bbox_area"
	CanvasCoverage    = "canvas_coverage"
	CenterOffsetX     = "center_offset_x"
	CenterOffsetY     = "center_offset_y"
	CenterOffsetTotal = "center_offset_total"

	StrokeCount = "stroke_count"
	PointCount  = "point_count"
	TotalTimeMS = "total_time_ms"
)

var allKeys = []string{
	VelocityMean, VelocityStd, VelocityMax,
	AccelerationMean, AccelerationStd,
	JerkMean, JerkStd,
	PathLengthPx, PathLengthMean,
	CurvatureMean, CurvatureStd, CornerCount,
	StrokeDurationMeanMS, StrokeDurationStdMS, StrokeDurationMaxMS,
	InterStrokePauseMeanMS, InterStrokePauseStdMS, InterStrokePauseMaxMS, TotalPauseMS,
	PressureMean, PressureStd, PressureMin, PressureMax, PressureRange, PressureCV,
	BBoxWidth, BBoxHeight, BBoxArea, CanvasCoverage,
	CenterOffsetX, CenterOffsetY, CenterOffsetTotal,
	StrokeCount, PointCount, TotalTimeMS,
}

// Keys returns every declared feature key in a fixed order.
func Keys() []string {
	out := make([]string, len(allKeys))
	copy(out, allKeys)
	return out
}
