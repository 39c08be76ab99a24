// Package replay implements the replay protection list of a server model.
//
// Each entry remembers a (source address, transaction id) pair for a fixed
// validity window. A repeated pair inside the window is a retransmission and
// must not be processed again.
//
// Entries are kept in expiry order and store the delay relative to the
// entry before them, so the list needs a single timer: it is armed for the
// head and, when it fires, re-armed for the next entry's delta. The sum of
// the deltas after the head is kept in delayTotal so a new entry's delta is
// computed without walking the list.
package replay
