package model

// ShapeType names a reference geometry a drawing task asks for.
type ShapeType string

// Known reference shapes.
const (
	ShapeCircle   ShapeType = "circle"
	ShapeSquare   ShapeType = "square"
	ShapeTriangle ShapeType = "triangle"
	ShapePentagon ShapeType = "pentagon"
	ShapeSpiral   ShapeType = "spiral"
	ShapeLine     ShapeType = "line"
	ShapeDotGrid  ShapeType = "dot_grid"
	ShapeFree     ShapeType = "free"
)

// ReferenceShapeConfig describes the target shape. Style options are
// descriptive only and never affect validation math.
type ReferenceShapeConfig struct {
	Type        ShapeType `json:"type" koanf:"type"`
	StrokeWidth float64   `json:"strokeWidth,omitempty" koanf:"stroke_width"`
	Dashed      bool      `json:"dashed,omitempty" koanf:"dashed"`
}

// ValidationResult scores a drawing against its reference shape (0..100).
type ValidationResult struct {
	Completion float64  `json:"completion"`
	Accuracy   float64  `json:"accuracy"`
	Notes      []string `json:"notes"`
}

// RiskLevel is the bucketed risk category.
type RiskLevel string

// Risk categories.
const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Biomarkers are handwriting-derived indicators, each 0..100.
type Biomarkers struct {
	Pressure            float64 `json:"pressure"`
	SpatialAccuracy     float64 `json:"spatialAccuracy"`
	TemporalConsistency float64 `json:"temporalConsistency"`
	CognitiveLoad       float64 `json:"cognitiveLoad"`
}

// TestScores holds the per-task scores of the assessment battery, each 0..100.
type TestScores struct {
	ClockDrawing     float64 `json:"clockDrawing"`
	WordRecall       float64 `json:"wordRecall"`
	ImageAssociation float64 `json:"imageAssociation"`
	SelectionMemory  float64 `json:"selectionMemory"`
}

// Mean returns the average of the four scores.
func (t TestScores) Mean() float64 {
	return (t.ClockDrawing + t.WordRecall + t.ImageAssociation + t.SelectionMemory) / 4
}

// Components exposes the independent scoring paths, all on the 0..1 scale.
type Components struct {
	LinearProxy float64 `json:"linearProxy"`
	Composite   float64 `json:"composite"`
	Model       float64 `json:"model"`
}

// RiskAssessment is the result handed to storage and export collaborators.
// Probability and Components are on the canonical 0..1 scale.
type RiskAssessment struct {
	SessionID       string            `json:"sessionId"`
	OverallRisk     RiskLevel         `json:"overallRisk"`
	Probability     float64           `json:"probability"`
	Biomarkers      Biomarkers        `json:"biomarkers"`
	TestScores      TestScores        `json:"testScores"`
	Recommendations []string          `json:"recommendations"`
	Components      Components        `json:"components"`
	Degraded        bool              `json:"degraded"`
	Validation      *ValidationResult `json:"validation,omitempty"`
	Features        FeatureVector     `json:"features,omitempty"`
}
