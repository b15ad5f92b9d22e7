package features

import (
	"math"

	"github.com/okian/penrisk/internal/domain/model"
)

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the bounding box of pts. The zero Box is returned for an
// empty slice.
func Bounds(pts []model.Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }
func (b Box) Area() float64   { return b.Width() * b.Height() }

// Center returns the box centre.
func (b Box) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}
