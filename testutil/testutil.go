package testutil

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

const bases = "ACGT"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Sequence returns n random bases.
func (r *RNG) Sequence(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequenceLocked(n)
}

func (r *RNG) sequenceLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = bases[r.rand.Intn(len(bases))]
	}
	return string(b)
}

// Qualities returns n random Phred+33 quality characters in [2, 41].
func (r *RNG) Qualities(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.qualitiesLocked(n)
}

func (r *RNG) qualitiesLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(33 + 2 + r.rand.Intn(40))
	}
	return string(b)
}

// IDs returns n ids of the form prefix0, prefix1, ...
func IDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return ids
}

// FASTA returns a FASTA file of n contigs named contig0..contigN-1, each
// with seqLen bases wrapped at width (no wrapping if width <= 0).
func (r *RNG) FASTA(n, seqLen, width int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, ">contig%d len=%d\n", i, seqLen)
		seq := r.sequenceLocked(seqLen)
		if width <= 0 {
			width = len(seq) + 1
		}
		for len(seq) > width {
			buf.WriteString(seq[:width])
			buf.WriteByte('\n')
			seq = seq[width:]
		}
		buf.WriteString(seq)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// FASTQ returns a FASTQ file of n reads named read0..readN-1.
func (r *RNG) FASTQ(n, readLen int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, "@read%d\n%s\n+\n%s\n", i, r.sequenceLocked(readLen), r.qualitiesLocked(readLen))
	}
	return buf.Bytes()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s, harmonic(n, s))
}

// ZipfIDs draws count ids from ids with Zipfian skew; ids[0] is the
// hottest.
func (r *RNG) ZipfIDs(ids []string, count int, s float64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	hns := harmonic(len(ids), s)
	out := make([]string, count)
	for i := range out {
		out[i] = ids[r.zipfLocked(len(ids), s, hns)]
	}
	return out
}

func harmonic(n int, s float64) float64 {
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}
	return hns
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s, hns float64) int {
	if n <= 1 {
		return 0
	}
	// inverse transform over the normalized harmonic weights
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}
