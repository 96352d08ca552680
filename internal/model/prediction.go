package model

import (
	"strings"
	"time"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MissingCategorical is the value absent categorical request fields normalize to.
const MissingCategorical = "nan"

// PredictionRequest is the raw input for a single SLA prediction.
type PredictionRequest struct {
	OpenDate    string  `json:"open_date"`
	DueDate     string  `json:"due_date"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	Item        *string `json:"item,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
}

// NewPredictionRequest builds a request with every categorical field present.
func NewPredictionRequest(openDate, dueDate, priority, category, item, subCategory string) PredictionRequest {
	return PredictionRequest{
		OpenDate:    openDate,
		DueDate:     dueDate,
		Priority:    &priority,
		Category:    &category,
		Item:        &item,
		SubCategory: &subCategory,
	}
}

// Categorical returns the raw categorical value for a request field,
// falling back to MissingCategorical when it was not supplied.
func Categorical(v *string) string {
	if v == nil {
		return MissingCategorical
	}
	return *v
}

// NormalizeCategorical lowercases and trims a categorical value so that
// encoder classes and request values compare equal.
func NormalizeCategorical(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// TicketFeatures holds the values derived from a request before encoding.
type TicketFeatures struct {
	OpenTimestamp time.Time
	DueTimestamp  time.Time
	Priority      string
	Category      string
	Item          string
	SubCategory   string
	DaysToDue     int
	OpenMonth     int
	CreationHour  int
	OpenDateOff   int
}

// PredictionResult is the outcome of a successful prediction.
type PredictionResult struct {
	VerdictText    string   `json:"violation_text"`
	Recommendation string   `json:"recommended_actions"`
	RiskFactors    []string `json:"risk_factors"`
	Confidence     float64  `json:"confidence"`
	Probability    float64  `json:"probability"`
	DaysToDue      int      `json:"days_to_due"`
	OpenHour       int      `json:"open_hour"`
	Violated       bool     `json:"sla_violated"`
	RuleApplied    bool     `json:"rule_applied"`
}

// PredictionResponse is what callers always receive: either a result or a
// structured error, never a bare failure.
type PredictionResponse struct {
	*PredictionResult
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the response carries a result.
func (r PredictionResponse) OK() bool {
	return r.Status == StatusSuccess && r.PredictionResult != nil
}

// PredictionLog is an audit entry for one served prediction.
type PredictionLog struct {
	CreatedAt   time.Time
	ID          string
	RequestedBy string
	Source      string
	Request     PredictionRequest
	Response    PredictionResponse
}
