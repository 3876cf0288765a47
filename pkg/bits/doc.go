// Package bits provides the sample index types used across the capture
// pipeline and bounds-checked views over byte buffers.
//
// Sample streams are stored MSB-first: bit 0 of a stream is bit 7 of its
// first byte. Positions and counts are distinct types so that a begin index
// is never accidentally used where a length is expected.
package bits
