package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two board clones created with the same SimulationKey and identical
// definitions MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// TrialKey derives an independent SimulationKey for Monte Carlo trial n.
// Derivation is masterKey XOR fnv1a64("trial_<n>"), so trials never share
// random streams regardless of execution order.
func TrialKey(key SimulationKey, n int) SimulationKey {
	return SimulationKey(int64(key) ^ fnv1a64(fmt.Sprintf("trial_%d", n)))
}

// SubsystemColumn returns the RNG subsystem name for a column.
// Each column draws its effort samples from its own stream, so adding a
// column to one lane never perturbs the draws seen by another.
func SubsystemColumn(lane, column string) string {
	return fmt.Sprintf("column/%s/%s", lane, column)
}

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterKey XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Each simulation run owns its own
// PartitionedRNG and must use it from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
