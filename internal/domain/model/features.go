package model

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// FeatureVector maps stable feature names to values.
type FeatureVector map[string]float64

// Get returns the value for key, or zero when absent.
func (f FeatureVector) Get(key string) float64 {
	return f[key]
}

// Keys returns the vector's keys in sorted order.
func (f FeatureVector) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sanitize replaces NaN and infinite values with zero.
func (f FeatureVector) Sanitize() FeatureVector {
	for k, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			f[k] = 0
		}
	}
	return f
}

// Clone returns a copy of the vector.
func (f FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// MarshalJSON writes a flat object with keys in sorted order so exported
// vectors diff cleanly.
func (f FeatureVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v := f[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
