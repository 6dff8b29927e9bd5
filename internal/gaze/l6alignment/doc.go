// Package l6alignment owns Layer 6 (Alignment): the recommended baseline
// alignment and stable calibration window of a filtered series, plus the
// descriptive statistics reported alongside it.
//
// "No stable sample" is a normal outcome, reported as a nil StableWindow.
package l6alignment
