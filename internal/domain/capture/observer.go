package capture

import "github.com/okian/penrisk/internal/domain/model"

// Observer receives capture lifecycle callbacks. Calls are made
// synchronously, after the state change and outside the capturer's lock.
type Observer interface {
	OnStrokeStart(p model.Point)
	OnPointAdded(p model.Point)
	OnStrokeEnd(s model.Stroke)
	OnCancel()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	StrokeStart func(model.Point)
	PointAdded  func(model.Point)
	StrokeEnd   func(model.Stroke)
	Cancel      func()
}

func (o ObserverFuncs) OnStrokeStart(p model.Point) {
	if o.StrokeStart != nil {
		o.StrokeStart(p)
	}
}

func (o ObserverFuncs) OnPointAdded(p model.Point) {
	if o.PointAdded != nil {
		o.PointAdded(p)
	}
}

func (o ObserverFuncs) OnStrokeEnd(s model.Stroke) {
	if o.StrokeEnd != nil {
		o.StrokeEnd(s)
	}
}

func (o ObserverFuncs) OnCancel() {
	if o.Cancel != nil {
		o.Cancel()
	}
}
