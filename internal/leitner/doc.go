// Package leitner schedules topic reviews on a fixed Leitner interval ladder.
//
// An Engine owns the in-memory set of review items for one learner. Every
// mutating call (Add, Record, Remove) writes a full snapshot through the
// injected store.Store before the change becomes visible; queries (Due,
// Upcoming, Stats, Summary) are recomputed from the clock on every call.
//
// The engine does no background work. Periodic polling for due topics is the
// caller's job (see package reminder).
package leitner
