// Package model loads the externally trained scaler and classifier
// artifacts and exposes them behind small interfaces so the scoring
// pipeline can be exercised with deterministic stubs.
//
// Both artifacts are loaded once at process start and never reloaded.
// A failed load degrades the service: the process still starts, the
// health endpoint reports unhealthy, and predictions fail until the
// operator restarts with valid artifacts.
package model

// Scaler transforms a raw feature vector into the model's input space.
type Scaler interface {
	Transform(values []float64) ([]float64, error)
}

// Classifier produces a probability distribution over its class labels.
// The label order of Classes matches the distribution indices.
type Classifier interface {
	PredictProbabilities(scaled []float64) ([]float64, error)
	Classes() []int
}
