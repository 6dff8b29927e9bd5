// Package l2derive owns Layer 2 (Derivation) of the gaze data model.
//
// Responsibilities: converting raw gaze/target vectors into horizontal and
// vertical angles, eye-specific diopter deviation, and vergence geometry.
// Key types: DerivedSample, DiopterMode, Eye.
//
// Every function here is pure. Zero-length vectors never panic: they
// normalise to the zero vector, read as 0°, and mark the sample Degenerate.
package l2derive
