// Package analytics derives view models from normalized incidents: grouping,
// filtering, descriptive statistics, safety scoring, anomaly detection,
// forecasting and insight generation.
//
// Every function is pure over its input slice. Inputs are never mutated and
// results hold value copies only, so views can be rebuilt from scratch on
// every filter change and computed concurrently by independent callers.
//
// Empty input is never an error: aggregations return empty collections,
// statistics return zeros, and rates with a zero denominator are 0.
package analytics
