// Package reading turns provider glucose readings into a canonical Measurement.
//
// Providers do not agree on the shape of a reading: it may be a bare number,
// a numeric string, a struct exposing an accessor, or a decoded JSON object.
// ExtractValue and ExtractTrend try a fixed, ordered list of strategies and
// return the first structurally valid match.
package reading
