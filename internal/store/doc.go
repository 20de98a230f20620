// Package store holds the server's five shared collections, each behind its
// own reader/writer lock: users, hotel catalog, reviews, per-city rankings,
// and per-city subscriber sets.
//
// Any code path that needs more than one of these locks at once must acquire
// them in the fixed order
//
//	reviews -> catalog -> rankings -> subscribers -> users
//
// and release them in reverse. The ranking cycle holds the first three for a
// whole recomputation pass; a path that needs users together with anything
// else takes users last. Deviating from this order risks deadlock.
//
// No store ever hands out a reference to its internals: reads return copies,
// and multi-structure work goes through the View/Update closures which run
// entirely under the corresponding lock.
package store
