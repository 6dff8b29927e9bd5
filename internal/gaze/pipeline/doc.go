// Package pipeline runs one gaze analysis from parsed samples to the
// alignment summary.
//
// This package is the composition root: it imports from the layer packages
// (l1samples, l2derive, l3kinematics, l4filter, l5events, l6alignment) and
// cluster, but none of those packages import pipeline/. Stages run strictly
// in sequence over an in-memory batch.
package pipeline
