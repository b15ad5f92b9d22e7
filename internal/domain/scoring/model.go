package scoring

import (
	"fmt"
	"math"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/modelconfig"
)

// NeutralProbability is returned whenever the model cannot produce a score.
const NeutralProbability = 0.5

// minScale guards the z-score denominator.
const minScale = 1e-12

// Prediction is the model proxy output on the 0..1 scale.
type Prediction struct {
	Probability float64
	Degraded    bool
}

// SlotTrace records how one model slot was filled, for auditing the
// feature-to-slot mapping.
type SlotTrace struct {
	Slot       string
	Index      int
	Sources    []string
	Combine    modelconfig.Combine
	Raw        float64
	Scaled     float64
	Importance float64
}

// Model is the importance-weighted proxy of a tree ensemble. It is immutable
// and safe for concurrent use.
type Model struct {
	names       []string
	mean        []float64
	scale       []float64
	importances []float64
	rules       []rule
}

type rule struct {
	source  string
	slot    int
	combine modelconfig.Combine
}

// NewModel builds a model from validated tables.
func NewModel(cfg modelconfig.Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	idx := cfg.Index()
	m := &Model{
		names:       append([]string(nil), cfg.FeatureNames...),
		mean:        append([]float64(nil), cfg.Mean...),
		scale:       append([]float64(nil), cfg.Scale...),
		importances: append([]float64(nil), cfg.Importances...),
		rules:       make([]rule, 0, len(cfg.Mapping)),
	}
	for _, r := range cfg.Mapping {
		comb := r.Combine
		if comb == "" {
			comb = modelconfig.CombineOverwrite
		}
		m.rules = append(m.rules, rule{source: r.Source, slot: idx[r.Target], combine: comb})
	}
	return m, nil
}

// Slots returns the number of model slots.
func (m *Model) Slots() int { return len(m.names) }

// mapFeatures applies the mapping table in order. Features absent from fv
// leave their slots untouched at zero.
func (m *Model) mapFeatures(fv model.FeatureVector) ([]float64, [][]string) {
	vals := make([]float64, len(m.names))
	sources := make([][]string, len(m.names))
	for _, r := range m.rules {
		v, ok := fv[r.source]
		if !ok {
			continue
		}
		n := len(sources[r.slot])
		switch {
		case n == 0 || r.combine == modelconfig.CombineOverwrite:
			vals[r.slot] = v
		case r.combine == modelconfig.CombineMax:
			vals[r.slot] = math.Max(vals[r.slot], v)
		case r.combine == modelconfig.CombineMean:
			vals[r.slot] = (vals[r.slot]*float64(n) + v) / float64(n+1)
		}
		sources[r.slot] = append(sources[r.slot], r.source)
	}
	return vals, sources
}

func (m *Model) scaled(i int, v float64) float64 {
	s := m.scale[i]
	if math.Abs(s) < minScale || math.IsNaN(s) {
		s = 1
	}
	return (v - m.mean[i]) / s
}

// Predict scores fv. Zero total importance or a non-finite score yields the
// neutral probability marked as degraded.
func (m *Model) Predict(fv model.FeatureVector) Prediction {
	if m == nil || len(m.names) == 0 {
		return Prediction{Probability: NeutralProbability, Degraded: true}
	}
	vals, _ := m.mapFeatures(fv)
	var sum, total float64
	for i, v := range vals {
		imp := m.importances[i]
		if imp <= 0 {
			continue
		}
		sum += m.scaled(i, v) * imp
		total += imp
	}
	if total <= 0 {
		return Prediction{Probability: NeutralProbability, Degraded: true}
	}
	score := sum / total
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Prediction{Probability: NeutralProbability, Degraded: true}
	}
	return Prediction{Probability: clamp(1/(1+math.Exp(-score)), 0, 1)}
}

// Trace reports, slot by slot, which features were written and the values
// the model used.
func (m *Model) Trace(fv model.FeatureVector) []SlotTrace {
	if m == nil {
		return nil
	}
	vals, sources := m.mapFeatures(fv)
	combine := make([]modelconfig.Combine, len(m.names))
	for _, r := range m.rules {
		combine[r.slot] = r.combine
	}
	out := make([]SlotTrace, len(m.names))
	for i, name := range m.names {
		out[i] = SlotTrace{
			Slot:       name,
			Index:      i,
			Sources:    sources[i],
			Combine:    combine[i],
			Raw:        vals[i],
			Scaled:     m.scaled(i, vals[i]),
			Importance: m.importances[i],
		}
	}
	return out
}
