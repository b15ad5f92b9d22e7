package features

import "math"

// summary holds population statistics of a sample set.
type summary struct {
	mean, std, min, max, sum float64
	n                        int
}

// summarize returns population mean/std. Std is zero for fewer than two
// samples; everything is zero for an empty set.
func summarize(xs []float64) summary {
	if len(xs) == 0 {
		return summary{}
	}
	s := summary{n: len(xs), min: xs[0], max: xs[0]}
	for _, x := range xs {
		s.sum += x
		s.min = math.Min(s.min, x)
		s.max = math.Max(s.max, x)
	}
	s.mean = s.sum / float64(s.n)
	if s.n < 2 {
		return s
	}
	var sq float64
	for _, x := range xs {
		d := x - s.mean
		sq += d * d
	}
	s.std = math.Sqrt(sq / float64(s.n))
	return s
}

// finite maps NaN and infinities to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// safeDiv returns a/b, or zero when b is zero or not finite.
func safeDiv(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return 0
	}
	return finite(a / b)
}
