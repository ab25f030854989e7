// Package services wires the dataset cache and the report assembler
// into the operations the HTTP layer exposes.
package services
