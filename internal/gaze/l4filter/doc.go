// Package l4filter owns Layer 4 (Filtering): standard-deviation outlier
// rejection over the tracked signals of a derived series.
//
// Two policies are supported. Windowed (the default) tests each sample
// against the statistics of the samples before it and is causal. Global
// tests every sample against whole-series statistics, which lets later
// samples influence earlier decisions (lookahead bias).
//
// Filtering selects membership only; DerivedSample values are never changed.
package l4filter
