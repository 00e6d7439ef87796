package aggregations

import (
	"fmt"
	"math"

	"github.com/sigetl/sigetl/primitive"
)

func init() {
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.first_frequency",
		Kind:    primitive.Aggregation,
		Outputs: value,
		BuildAggregator: func(map[string]interface{}) (primitive.Aggregator, error) {
			return FirstFrequency{}, nil
		},
	})
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.dominant_frequency",
		Kind:    primitive.Aggregation,
		Outputs: value,
		BuildAggregator: func(map[string]interface{}) (primitive.Aggregator, error) {
			return DominantFrequency{}, nil
		},
	})
	primitive.MustRegister(primitive.Spec{
		Name:    "frequency.peak",
		Kind:    primitive.Aggregation,
		Outputs: []primitive.Field{{Name: "frequency_value"}, {Name: "amplitude_value"}},
		BuildAggregator: func(map[string]interface{}) (primitive.Aggregator, error) {
			return Peak{}, nil
		},
	})
}

// FirstFrequency returns the first frequency bin of the representation, which
// is the zero-frequency bin for the fft transforms.
type FirstFrequency struct{}

// Aggregate implements primitive.Aggregator.
func (FirstFrequency) Aggregate(s primitive.Signal) ([]float64, error) {
	if len(s.Frequencies) == 0 {
		return nil, fmt.Errorf("first_frequency: no frequency values; apply a frequency transformation first")
	}
	return []float64{s.Frequencies[0]}, nil
}

// DominantFrequency returns the frequency of the bin with the largest absolute
// amplitude.
type DominantFrequency struct{}

// Aggregate implements primitive.Aggregator.
func (DominantFrequency) Aggregate(s primitive.Signal) ([]float64, error) {
	i, _, err := argmaxAbs(s)
	if err != nil {
		return nil, fmt.Errorf("dominant_frequency: %w", err)
	}
	return []float64{s.Frequencies[i]}, nil
}

// Peak returns both the frequency and the amplitude of the strongest bin.
type Peak struct{}

// Aggregate implements primitive.Aggregator.
func (Peak) Aggregate(s primitive.Signal) ([]float64, error) {
	i, amplitude, err := argmaxAbs(s)
	if err != nil {
		return nil, fmt.Errorf("peak: %w", err)
	}
	return []float64{s.Frequencies[i], amplitude}, nil
}

func argmaxAbs(s primitive.Signal) (int, float64, error) {
	if len(s.Frequencies) == 0 {
		return 0, 0, fmt.Errorf("no frequency values; apply a frequency transformation first")
	}
	if len(s.Frequencies) != len(s.Amplitudes) {
		return 0, 0, fmt.Errorf("%d frequency values for %d amplitude values", len(s.Frequencies), len(s.Amplitudes))
	}
	best, bestAbs := 0, math.Inf(-1)
	for i, v := range s.Amplitudes {
		if a := math.Abs(v); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	return best, s.Amplitudes[best], nil
}
