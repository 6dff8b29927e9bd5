// Package l1samples owns Layer 1 (Samples) of the gaze data model.
//
// Responsibilities: the typed Sample record, 3-vector helpers, and CSV
// ingestion with schema validation.
// Key types: Vec3, Sample.
//
// Dependency rule: L1 depends on nothing else under internal/gaze.
package l1samples
