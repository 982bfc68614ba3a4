// Package shuffle computes randomized permutations of playlist item ids.
//
// # Placement
//
// A single pass allocates an empty output of the same length as the input and walks the input once.
// Each element draws a uniformly random slot; if the slot is free the element is placed there, otherwise
// the element redraws until it lands on a free slot. Every placement claims exactly one free slot, so a pass
// always terminates with a full permutation of its input.
//
// The expected cost of a pass grows towards O(n²) draws as the last few elements hunt for the remaining free
// slots. For playlists (hundreds of items) this is immaterial. A per-element draw ceiling guards against a
// broken [Source]; reaching it returns [ErrPlacementStalled] rather than changing the algorithm.
//
// # Passes
//
// [Permute] applies the single pass repeatedly, feeding each pass's output into the next. Pass count is a
// caller-supplied parameter (at least 1).
//
// # Randomness
//
// The generator is always injected through [Source]. [NewSource] builds a seeded PCG generator so runs
// can be reproduced from a recorded seed.
package shuffle
