package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/model"
)

// Options configures a Predictor.
type Options struct {
	// Calendar decides whether the open date is a non-working day.
	Calendar NonWorkingDays
	// Location interprets zone-less timestamps. Defaults to UTC.
	Location *time.Location
	// Classifier replaces the bundle's forest when set.
	Classifier Classifier
	// Metrics receives prediction counters; nil disables them.
	Metrics *Metrics
	// OverridePriority is the normalized always-violated tier.
	// Defaults to DefaultOverridePriority.
	OverridePriority string
}

// Predictor serves SLA predictions from a loaded artifact bundle.
type Predictor struct {
	bundle     *artifact.Bundle
	deriver    *Deriver
	encoder    *Encoder
	scaler     *Scaler
	classifier Classifier
	metrics    *Metrics
	policy     Policy
}

// New builds a Predictor. The bundle must already be validated by
// artifact.Load and is not modified.
func New(bundle *artifact.Bundle, opts Options) (*Predictor, error) {
	if bundle == nil {
		return nil, errors.New("predictor requires an artifact bundle")
	}

	override := Normalize(opts.OverridePriority)
	if override == "" {
		override = DefaultOverridePriority
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewForestClassifier(bundle.Model)
	}

	if classes, ok := bundle.Encoders[ColumnPriority]; ok && !slices.Contains(normalizeAll(classes), override) {
		slog.Warn("Override priority is not in the trained Priority vocabulary; the business rule can still match raw input",
			"override_priority", override,
			"vocabulary", classes)
	}

	return &Predictor{
		bundle:     bundle,
		deriver:    NewDeriver(opts.Calendar, opts.Location),
		encoder:    NewEncoder(bundle.Encoders, opts.Metrics),
		scaler:     NewScaler(bundle.Scaler, bundle.FeatureNames),
		classifier: classifier,
		metrics:    opts.Metrics,
		policy: Policy{
			Threshold:        bundle.Threshold,
			OverridePriority: override,
		},
	}, nil
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out
}

// Threshold returns the calibrated decision threshold.
func (p *Predictor) Threshold() float64 {
	return p.policy.Threshold
}

// OverridePriority returns the normalized always-violated priority tier.
func (p *Predictor) OverridePriority() string {
	return p.policy.OverridePriority
}

// Bundle returns the artifact bundle backing the predictor.
func (p *Predictor) Bundle() *artifact.Bundle {
	return p.bundle
}

// Vectorize derives, encodes and scales a request into a model input.
func (p *Predictor) Vectorize(req model.PredictionRequest) (model.TicketFeatures, FeatureVector, error) {
	features, err := p.deriver.Derive(req)
	if err != nil {
		return model.TicketFeatures{}, nil, err
	}

	row := numericRow(features)
	for _, pair := range categoricalColumns(features) {
		column, value := pair[0], pair[1]
		if !p.encoder.HasColumn(column) {
			continue
		}
		row[column] = float64(p.encoder.Encode(column, value))
	}

	vec := p.scaler.Transform(row)
	slog.Debug("Built feature vector", "features", p.bundle.FeatureNames, "vector", []float64(vec))

	return features, vec, nil
}

// Evaluate runs the full pipeline and returns typed errors:
// *InvalidInputError for unparsable dates and *ModelInferenceError when the
// classifier rejects the vector.
func (p *Predictor) Evaluate(req model.PredictionRequest) (*model.PredictionResult, error) {
	features, vec, err := p.Vectorize(req)
	if err != nil {
		return nil, err
	}

	probability, err := p.classifier.PredictProbability(vec)
	if err != nil {
		return nil, err
	}

	result := p.policy.Decide(probability, features)
	slog.Debug("Prediction decided",
		"probability", probability,
		"threshold", p.policy.Threshold,
		"violated", result.Violated,
		"rule_applied", result.RuleApplied)

	return result, nil
}

// Predict evaluates req and always returns a well-formed response: failures,
// including panics inside the pipeline, become an error status with a message.
func (p *Predictor) Predict(ctx context.Context, req model.PredictionRequest) (resp model.PredictionResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Prediction panicked", "panic", r)
			resp = model.PredictionResponse{
				Status:  model.StatusError,
				Message: fmt.Sprintf("prediction failed: %v", r),
			}
		}

		outcome := OutcomeError
		if resp.OK() {
			outcome = OutcomeCompliant
			if resp.Violated {
				outcome = OutcomeViolated
			}
			if resp.RuleApplied {
				p.metrics.override()
			}
		}
		p.metrics.observe(outcome, time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return model.PredictionResponse{Status: model.StatusError, Message: err.Error()}
	}

	result, err := p.Evaluate(req)
	if err != nil {
		slog.Warn("Prediction failed", "error", err)
		return model.PredictionResponse{Status: model.StatusError, Message: err.Error()}
	}

	return model.PredictionResponse{Status: model.StatusSuccess, PredictionResult: result}
}
