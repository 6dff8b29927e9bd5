// Package l5events owns Layer 5 (Events): single-pass threshold state
// machines that segment an angular signal into saccades, fixations, and
// binocular fusion windows.
//
// Detectors run over the unfiltered derived series so events reflect raw
// kinematics. An event still open when the series ends has no closing sample
// and is discarded. Inputs shorter than two samples produce no events.
//
// Event index ranges are closed: [StartIndex, EndIndex] are the sample
// indices whose timestamps define Duration. Events for one signal never
// overlap and are emitted in increasing StartIndex order.
package l5events
