package shuffle

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/ytshuffle/internal/shared"
)

// ErrPlacementStalled is returned when an element exhausts its draw budget without finding a free slot.
var ErrPlacementStalled = errors.New("placement stalled")

// Source yields uniformly distributed integers in [0, n). [*rand.Rand] satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG-backed generator for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ResolveSeed returns seed unchanged, or a clock-derived seed when seed is zero.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return seed
}

// Permute returns a permutation of ids after the given number of placement passes.
//
// ids is never modified. The result contains every element of ids exactly once.
func Permute(ids []string, passes int, rng Source) ([]string, error) {
	if passes < 1 {
		return nil, fmt.Errorf("%w: passes must be at least 1, got %d", shared.ErrInvalidArgument, passes)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", shared.ErrInvalidArgument)
	}

	current := make([]string, len(ids))
	copy(current, ids)

	for pass := 1; pass <= passes; pass++ {
		next, err := place(current, rng)
		if err != nil {
			return nil, fmt.Errorf("pass %d of %d: %w", pass, passes, err)
		}
		current = next
	}

	return current, nil
}

// place runs one rejection-sampling pass over in.
func place(in []string, rng Source) ([]string, error) {
	n := len(in)
	out := make([]string, n)
	taken := make([]bool, n)
	free := n
	limit := maxDraws(n)

	for i, id := range in {
		placed := false
		for draws := 0; draws < limit; draws++ {
			slot := rng.IntN(n)
			if slot < 0 || slot >= n {
				return nil, fmt.Errorf("%w: source returned %d outside [0, %d)", shared.ErrInvalidArgument, slot, n)
			}
			if taken[slot] {
				continue
			}
			out[slot] = id
			taken[slot] = true
			free--
			placed = true
			break
		}

		if !placed {
			return nil, fmt.Errorf("%w: element %d of %d after %d draws (%d slots free)", ErrPlacementStalled, i+1, n, limit, free)
		}
		if free != n-(i+1) {
			panic(fmt.Sprintf("shuffle: %d free slots after placing %d of %d", free, i+1, n))
		}
	}

	return out, nil
}

// maxDraws bounds the draws a single element may spend looking for a free slot.
//
// With one free slot out of n the chance of missing it k times is (1-1/n)^k, about e^-64 at this bound.
func maxDraws(n int) int {
	return 64*n + 64
}
