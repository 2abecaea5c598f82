// Package query answers questions from a single knowledge partition.
//
// An Engine loads the partition for a resolved topic, hands the entries to
// an ai.Answerer under a strict "use only this context" instruction and
// returns the answer together with the exact entries it was given.
//
// Model failures never surface as errors: they become a fixed apology
// string so callers can always render a reply. Storage failures do
// propagate.
package query
