package dsa

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// ─── Bloom Filter ───────────────────────────────────────────────────────────
// Probabilistic set membership for transaction ids. Screens duplicate ids
// before the history cache map is consulted:
//   - No  → definitely a fresh id (zero false negatives)
//   - Yes → possibly seen before; the cache map gives the exact answer
//
// Space: ~14.4 bits per element at 0.1% FP → ~1.8 KB per 1000 transactions.

// BloomConfig configures a Bloom filter.
type BloomConfig struct {
	ExpectedItems int     // Expected number of elements
	FPRate        float64 // Desired false positive rate (e.g. 0.001 = 0.1%)
}

// DefaultBloomConfig returns defaults sized for a million transactions
// at a 0.1% false positive rate.
func DefaultBloomConfig() BloomConfig {
	return BloomConfig{
		ExpectedItems: 1_000_000,
		FPRate:        0.001,
	}
}

// BloomFilter is a space-efficient probabilistic set of uint64 keys.
// It is owned by a single writer and carries no locking of its own.
type BloomFilter struct {
	bits    []uint64 // bit array stored as uint64 words
	numBits uint     // total bits
	numHash uint     // number of hash functions
	count   int      // elements added
}

// NewBloomFilter creates a Bloom filter sized to achieve the target FP rate.
// Optimal sizing formulas:
//
//	m = -(n * ln(p)) / (ln(2)^2)   — total bits
//	k = (m/n) * ln(2)              — hash functions
func NewBloomFilter(cfg BloomConfig) *BloomFilter {
	if cfg.ExpectedItems <= 0 {
		cfg.ExpectedItems = 1_000_000
	}
	if cfg.FPRate <= 0 || cfg.FPRate >= 1 {
		cfg.FPRate = 0.001
	}

	n := float64(cfg.ExpectedItems)
	p := cfg.FPRate

	m := uint(math.Ceil(-(n * math.Log(p)) / (math.Log(2) * math.Log(2))))
	k := uint(math.Ceil(float64(m) / n * math.Log(2)))

	if m == 0 {
		m = 64
	}
	if k == 0 {
		k = 1
	}

	// Round up to next uint64 boundary
	words := (m + 63) / 64

	return &BloomFilter{
		bits:    make([]uint64, words),
		numBits: m,
		numHash: k,
	}
}

// Add inserts a key into the filter.
func (bf *BloomFilter) Add(key uint64) {
	h1, h2 := bf.baseHashes(key)
	for i := uint(0); i < bf.numHash; i++ {
		pos := bf.nthHash(h1, h2, i)
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
	bf.count++
}

// Contains tests whether a key might be in the filter.
// False means definitely not present. True means probably present.
func (bf *BloomFilter) Contains(key uint64) bool {
	h1, h2 := bf.baseHashes(key)
	for i := uint(0); i < bf.numHash; i++ {
		pos := bf.nthHash(h1, h2, i)
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false // Definitely not present
		}
	}
	return true // Probably present
}

// Count returns the number of keys added.
func (bf *BloomFilter) Count() int { return bf.count }

// EstimatedFPRate returns the estimated current false positive rate
// based on the number of keys added.
func (bf *BloomFilter) EstimatedFPRate() float64 {
	if bf.count == 0 {
		return 0
	}
	// (1 - e^(-kn/m))^k
	exp := -float64(bf.numHash) * float64(bf.count) / float64(bf.numBits)
	return math.Pow(1-math.Exp(exp), float64(bf.numHash))
}

// ─── Hashing ────────────────────────────────────────────────────────────────
// Double hashing (Kirsch–Mitzenmacher): two base hashes combine to
// simulate k independent hash functions.

func (bf *BloomFilter) baseHashes(key uint64) (uint64, uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	sum := sha256.Sum256(buf[:])
	h1 := binary.LittleEndian.Uint64(sum[0:8])
	h2 := binary.LittleEndian.Uint64(sum[8:16])
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

func (bf *BloomFilter) nthHash(h1, h2 uint64, i uint) uint {
	return uint((h1 + uint64(i)*h2) % uint64(bf.numBits))
}
