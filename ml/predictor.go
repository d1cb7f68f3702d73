package ml

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Predictor is the process-wide inference handle. The current model and
// its cache live in one slot that is replaced atomically, so requests never
// lock and never see a cache entry produced by another model.
type Predictor struct {
	slot      atomic.Pointer[predictorSlot]
	cacheSize int
}

type predictorSlot struct {
	model Classifier
	cache *lru.Cache[FeatureVector, Prediction]
}

// NewPredictor wraps model. cacheSize <= 0 disables the prediction cache.
func NewPredictor(model Classifier, cacheSize int) (*Predictor, error) {
	p := &Predictor{cacheSize: cacheSize}
	if err := p.Swap(model); err != nil {
		return nil, err
	}
	return p, nil
}

// Swap installs a new model and drops cached predictions of the old one.
func (p *Predictor) Swap(model Classifier) error {
	if model == nil {
		return ErrNoModel
	}
	if model.NumFeatures() != NumFeatures {
		return fmt.Errorf("%w: %w", ErrInvalidModel, &WidthError{Got: NumFeatures, Want: model.NumFeatures()})
	}
	slot := &predictorSlot{model: model}
	if p.cacheSize > 0 {
		cache, err := lru.New[FeatureVector, Prediction](p.cacheSize)
		if err != nil {
			return err
		}
		slot.cache = cache
	}
	p.slot.Store(slot)
	return nil
}

// Model returns the classifier currently in service.
func (p *Predictor) Model() Classifier {
	if slot := p.slot.Load(); slot != nil {
		return slot.model
	}
	return nil
}

// Predict runs the classifier on an encoded vector.
func (p *Predictor) Predict(v FeatureVector) (Prediction, error) {
	slot := p.slot.Load()
	if slot == nil {
		return Prediction{}, ErrNoModel
	}
	if slot.cache != nil {
		if cached, ok := slot.cache.Get(v); ok {
			return cached, nil
		}
	}
	pred, err := predictWith(slot.model, v[:])
	if err != nil {
		return Prediction{}, err
	}
	if slot.cache != nil {
		slot.cache.Add(v, pred)
	}
	return pred, nil
}

// PredictValues is Predict for callers holding a raw slice. A slice of the
// wrong width is rejected with a *WidthError.
func (p *Predictor) PredictValues(values []float64) (Prediction, error) {
	if len(values) != NumFeatures {
		return Prediction{}, &WidthError{Got: len(values), Want: NumFeatures}
	}
	var v FeatureVector
	copy(v[:], values)
	return p.Predict(v)
}

// CacheLen reports the number of cached predictions for the current model.
func (p *Predictor) CacheLen() int {
	slot := p.slot.Load()
	if slot == nil || slot.cache == nil {
		return 0
	}
	return slot.cache.Len()
}

func predictWith(model Classifier, values []float64) (Prediction, error) {
	class, confidence, err := model.Predict(values)
	if err != nil {
		return Prediction{}, err
	}
	label, err := labelFromClass(class)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Label: label, Confidence: confidence}, nil
}
