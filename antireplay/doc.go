// Package antireplay detects replayed cryptographic nonces.
//
// Every inbound connection presents a nonce and a replayed one must
// never be silently accepted, so the detector is consulted on the hot
// path and has to bound its memory despite an unbounded stream of
// values.
//
// # Ping-pong filter
//
// The main implementation keeps two Bloom filters, each sized for half
// of the nominal capacity, and uses them as a ring buffer. Only one
// slot receives inserts at a time; when it fills up, the other slot is
// cleared and becomes active, while the previously active one keeps
// serving reads until the next rotation. A value survives two rotations
// after its insert, so anything within the last half-capacity
// insertions is always still covered by at least one slot, and most
// values live close to the full nominal capacity.
//
// A single unbounded set would grow forever. A single bounded set that
// resets on overflow would forget everything at once and open a replay
// window right after the reset. The ping-pong scheme avoids both at the
// cost of doubling the memory of a single set of the same nominal
// capacity.
//
// Properties:
//   - No false negatives: a value within the window is always detected.
//   - False positives are possible and bounded by the configured rate.
//     A false positive rejects a legitimate first-time connection, which
//     is why the client role uses a drastically tighter rate than the
//     server role (volume there is low and a spurious reject hurts).
//   - Constant memory, chosen at construction.
//
// The filter itself is not synchronized. Guard wraps it with a mutex
// scoped to the single check-and-insert unit, which is what connection
// handlers are expected to share.
package antireplay
