// Package predict turns a raw ticket description into an SLA-violation
// prediction. A request flows through feature derivation, categorical
// encoding, min-max scaling, the frozen classifier, and finally the decision
// policy which applies the calibrated threshold and the critical-priority
// business rule.
//
// A Predictor is built once from a validated artifact bundle and is read-only
// afterwards, so any number of goroutines may call it concurrently.
package predict
