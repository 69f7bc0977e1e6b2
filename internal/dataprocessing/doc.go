// Package dataprocessing implements the result normalization and ranking
// engine: subject schema inference over wide-format mark sheet headers,
// section assignment, per-subject and per-student Pass/Fail/Absent
// classification, marks/percentage/category metrics, optional
// credit-weighted SGPA, competition ranking and report aggregation.
//
// The engine is a pure, synchronous transformation over an immutable
// dataset snapshot plus configuration. It performs no I/O, reads no
// ambient state and degrades policy-driven on messy input instead of
// failing: unrecognized headers are excluded, non-numeric marks coerce
// to zero and unmatched identifiers land in the "Unassigned" section.
package dataprocessing
