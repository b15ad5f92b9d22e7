// Package synthetic produces drawing sessions for demos, load tests and
// fixtures. Each session traces the reference circle; the risk level of a
// sample controls how much its position, pressure and timing wander.
package synthetic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/penrisk/internal/domain/capture"
	"github.com/okian/penrisk/internal/domain/model"
)

const (
	minPoints      = 16
	defaultPoints  = 72
	sampleInterval = 16 // ms between samples of a steady hand
	radiusFraction = 0.35
	strokeGapMS    = 150
)

var defaultTestTypes = []string{"clockDrawing", "wordRecall", "imageAssociation", "selectionMemory"}

// Sample is one generated session with the risk it was drawn at.
type Sample struct {
	Session    model.Session
	Recording  capture.Recording
	Risk       float64
	TestScores model.TestScores
}

// Generator is a seeded source of synthetic sessions. It is safe for
// concurrent use; output for a given seed and call order is reproducible
// apart from stroke ids.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	seq int

	canvas     model.CanvasSize
	minStrokes int
	maxStrokes int
	points     int
	testTypes  []string
	start      time.Time
	riskLo     float64
	riskHi     float64
}

// New creates a generator seeded with seed.
func New(seed uint64, opts ...Option) *Generator {
	g := &Generator{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		canvas:     model.CanvasSize{Width: 400, Height: 400},
		minStrokes: 1,
		maxStrokes: 4,
		points:     defaultPoints,
		testTypes:  defaultTestTypes,
		start:      time.UnixMilli(1_700_000_000_000),
		riskLo:     0.1,
		riskHi:     0.9,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Recording builds the raw input log for one session at risk in [0, 1].
func (g *Generator) Recording(id string, risk float64) capture.Recording {
	risk = clamp(risk, 0, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recordingLocked(id, risk)
}

// Session builds a recording and replays it through the capture layer.
func (g *Generator) Session(id string, risk float64) (model.Session, error) {
	rec := g.Recording(id, risk)
	s, err := capture.Replay(rec, capture.WithSmoothing(1))
	if err != nil {
		return model.Session{}, fmt.Errorf("replay %s: %w", id, err)
	}
	return s, nil
}

// Batch generates n samples with risk drawn uniformly from the configured
// range, [0.1, 0.9] by default.
func (g *Generator) Batch(n int) ([]Sample, error) {
	out := make([]Sample, 0, n)
	for range n {
		g.mu.Lock()
		g.seq++
		id := fmt.Sprintf("synthetic-%06d", g.seq)
		risk := g.riskLo + (g.riskHi-g.riskLo)*g.rng.Float64()
		rec := g.recordingLocked(id, risk)
		scores := g.scoresLocked(risk)
		g.mu.Unlock()

		s, err := capture.Replay(rec, capture.WithSmoothing(1))
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", id, err)
		}
		out = append(out, Sample{Session: s, Recording: rec, Risk: risk, TestScores: scores})
	}
	return out, nil
}

func (g *Generator) recordingLocked(id string, risk float64) capture.Recording {
	r := g.rng
	cx, cy := g.canvas.Width/2, g.canvas.Height/2
	radius := radiusFraction * min(g.canvas.Width, g.canvas.Height)
	// a shakier hand also under- or overshoots the radius
	radius *= 1 + risk*0.3*(r.Float64()-0.5)

	strokes := g.minStrokes + r.IntN(g.maxStrokes-g.minStrokes+1)
	perStroke := max(g.points/strokes, 2)
	posSigma := 0.5 + risk*12
	pressSigma := 0.02 + risk*0.2
	basePressure := 0.75 - 0.35*risk

	ts := uint64(g.start.UnixMilli()) + uint64(r.IntN(86_400_000))
	rec := capture.Recording{
		SessionID: id,
		TestType:  g.testTypes[r.IntN(len(g.testTypes))],
		Canvas:    g.canvas,
		Events:    make([]capture.Event, 0, strokes*(perStroke+2)),
	}

	total := strokes * perStroke
	for s := range strokes {
		for j := range perStroke {
			k := s*perStroke + j
			theta := 2 * math.Pi * float64(k) / float64(total-1)
			in := capture.RawInput{
				Kind:      capture.SourcePen,
				X:         cx + radius*math.Cos(theta) + r.NormFloat64()*posSigma,
				Y:         cy + radius*math.Sin(theta) + r.NormFloat64()*posSigma,
				Pressure:  clamp(basePressure+r.NormFloat64()*pressSigma, 0, 1),
				Timestamp: ts,
			}
			typ := capture.EventMove
			if j == 0 {
				typ = capture.EventDown
			}
			rec.Events = append(rec.Events, capture.Event{Type: typ, RawInput: in})
			ts += sampleInterval + uint64(risk*float64(sampleInterval)*r.ExpFloat64())
		}
		rec.Events = append(rec.Events, capture.Event{Type: capture.EventUp, RawInput: capture.RawInput{Kind: capture.SourcePen, Timestamp: ts}})
		ts += strokeGapMS + uint64(risk*1500*r.Float64())

		if s < strokes-1 && risk > 0.6 && r.Float64() < risk {
			rec.Events = append(rec.Events,
				capture.Event{Type: capture.EventPause, RawInput: capture.RawInput{Timestamp: ts}},
				capture.Event{Type: capture.EventResume, RawInput: capture.RawInput{Timestamp: ts + 500}})
			ts += 500
		}
	}
	return rec
}

// scoresLocked draws cognitive test scores that fall as risk rises.
func (g *Generator) scoresLocked(risk float64) model.TestScores {
	score := func() float64 {
		return math.Round(clamp(100*(1-risk)+g.rng.NormFloat64()*8, 0, 100))
	}
	return model.TestScores{
		ClockDrawing:     score(),
		WordRecall:       score(),
		ImageAssociation: score(),
		SelectionMemory:  score(),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
