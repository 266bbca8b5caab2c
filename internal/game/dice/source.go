package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// pcgStream is the fixed second word of the PCG state; only the seed varies.
const pcgStream = 0x9e3779b97f4a7c15

// mustPositive panics when a Source is asked for an empty range.
func mustPositive(n int) {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
}

// entropySource draws from the operating system's CSPRNG. Used for real play
// where fights must not be reproducible.
type entropySource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source { return entropySource{} }

func (entropySource) Intn(n int) int {
	mustPositive(n)
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: entropy read failed: " + err.Error())
	}
	return int(v.Int64())
}

// pcgSource replays the same sequence for the same seed, which makes whole
// battles reproducible when combat.seed is set.
type pcgSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
func NewSeededSource(seed uint64) Source {
	return &pcgSource{rng: mrand.New(mrand.NewPCG(seed, pcgStream))}
}

func (p *pcgSource) Intn(n int) int {
	mustPositive(n)
	return p.rng.IntN(n)
}
