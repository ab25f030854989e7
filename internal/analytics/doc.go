// Package analytics provides the grouped-mean, top-N and linear
// trend computations behind the dashboard outputs. Everything here is
// a pure function over record slices.
package analytics
