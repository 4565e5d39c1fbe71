package model

import (
	"log/slog"
	"time"
)

// Handle carries the process-wide scaler/classifier pair. It is built
// once at startup and read-only afterwards, so request handlers may
// share it freely across goroutines.
type Handle struct {
	scaler     Scaler
	classifier Classifier
	loadedAt   time.Time
}

// Load reads both artifacts from disk. Load never fails the process:
// a missing or malformed artifact leaves the corresponding collaborator
// nil, Available reports false, and every prediction call is rejected
// until the operator restarts with valid paths. There is no hot reload.
func Load(scalerPath, classifierPath string, logger *slog.Logger) *Handle {
	h := &Handle{loadedAt: time.Now().UTC()}

	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		logger.Error("failed to load scaler artifact", "path", scalerPath, "error", err)
	} else {
		h.scaler = scaler
		logger.Info("scaler artifact loaded", "path", scalerPath, "features", len(scaler.Mean))
	}

	classifier, err := LoadClassifier(classifierPath)
	if err != nil {
		logger.Error("failed to load classifier artifact", "path", classifierPath, "error", err)
	} else {
		h.classifier = classifier
		logger.Info("classifier artifact loaded", "path", classifierPath, "classes", classifier.ClassLabels)
	}

	return h
}

// NewHandle wraps pre-built collaborators. Used by tests and by callers
// that obtain artifacts from somewhere other than the filesystem.
func NewHandle(scaler Scaler, classifier Classifier) *Handle {
	return &Handle{scaler: scaler, classifier: classifier, loadedAt: time.Now().UTC()}
}

// Scaler returns the loaded scaler, or nil if loading failed.
func (h *Handle) Scaler() Scaler { return h.scaler }

// Classifier returns the loaded classifier, or nil if loading failed.
func (h *Handle) Classifier() Classifier { return h.classifier }

// ScalerLoaded reports whether the scaler artifact is usable.
func (h *Handle) ScalerLoaded() bool { return h.scaler != nil }

// ClassifierLoaded reports whether the classifier artifact is usable.
func (h *Handle) ClassifierLoaded() bool { return h.classifier != nil }

// Available reports whether predictions can be served.
func (h *Handle) Available() bool { return h.scaler != nil && h.classifier != nil }

// LoadedAt returns when the artifacts were (attempted to be) loaded.
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }
