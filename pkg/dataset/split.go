package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// Splits holds the three partitions of a dataset.
type Splits struct {
	Train []core.Record
	Val   []core.Record
	Test  []core.Record
}

// Len returns the total number of records across partitions.
func (s Splits) Len() int {
	return len(s.Train) + len(s.Val) + len(s.Test)
}

// ValidateRatios checks that both ratios are in [0, 1) and sum below 1.
func ValidateRatios(valRatio, testRatio float64) error {
	if !(valRatio >= 0 && valRatio < 1) {
		return fmt.Errorf("%w: val-ratio must be in [0, 1)", core.ErrInvalidRatio)
	}
	if !(testRatio >= 0 && testRatio < 1) {
		return fmt.Errorf("%w: test-ratio must be in [0, 1)", core.ErrInvalidRatio)
	}
	if valRatio+testRatio >= 1 {
		return fmt.Errorf("%w: val-ratio + test-ratio must be less than 1", core.ErrInvalidRatio)
	}
	return nil
}

// Split shuffles a copy of records with a generator seeded by seed and cuts
// it into train, validation and test partitions. The validation and test
// sizes are floor(n*ratio); train takes the remainder. The same seed always
// yields the same assignment.
func Split(records []core.Record, valRatio, testRatio float64, seed uint64) (Splits, error) {
	if err := ValidateRatios(valRatio, testRatio); err != nil {
		return Splits{}, err
	}

	shuffled := make([]core.Record, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	total := len(shuffled)
	valCount := int(float64(total) * valRatio)
	testCount := int(float64(total) * testRatio)
	trainCount := total - valCount - testCount

	return Splits{
		Train: shuffled[:trainCount],
		Val:   shuffled[trainCount : trainCount+valCount],
		Test:  shuffled[trainCount+valCount:],
	}, nil
}
