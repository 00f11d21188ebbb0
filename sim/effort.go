package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// EffortSampler generates the required effort, in days, for a card newly
// admitted into a column. Drawn once per admission so repeated runs differ
// only through their RNG streams.
type EffortSampler interface {
	// Sample returns a non-negative day count.
	Sample(rng *rand.Rand) int
}

// EffortSpec parameterizes an effort distribution in configuration.
type EffortSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
	PDF    map[int]float64    `yaml:"pdf,omitempty"`
}

// ConstantEffort always returns the same fixed day count.
type ConstantEffort struct {
	value int
}

func (s *ConstantEffort) Sample(_ *rand.Rand) int {
	if s.value < 0 {
		return 0
	}
	return s.value
}

// UniformEffort draws uniformly from [min, max] inclusive.
type UniformEffort struct {
	min, max int
}

func (s *UniformEffort) Sample(rng *rand.Rand) int {
	if s.min >= s.max {
		return s.min
	}
	return s.min + rng.Intn(s.max-s.min+1)
}

// GaussianEffort produces clamped Gaussian day counts.
type GaussianEffort struct {
	mean, stdDev float64
	min, max     int
}

func (s *GaussianEffort) Sample(rng *rand.Rand) int {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	result := int(math.Round(clamped))
	if result < 0 {
		return 0
	}
	return result
}

// ExponentialEffort produces exponentially-distributed day counts.
type ExponentialEffort struct {
	mean float64
}

func (s *ExponentialEffort) Sample(rng *rand.Rand) int {
	val := rng.ExpFloat64() * s.mean
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0
	}
	return int(math.Round(val))
}

// EmpiricalEffort samples from an empirical probability distribution using
// inverse CDF via binary search. Probabilities are normalized if they do not
// sum to 1.0.
type EmpiricalEffort struct {
	values []int     // sorted day-count values
	cdf    []float64 // cumulative probabilities, same length as values
}

// NewEmpiricalEffort creates a sampler from a PDF map (days -> probability).
func NewEmpiricalEffort(pdf map[int]float64) (*EmpiricalEffort, error) {
	keys := make([]int, 0, len(pdf))
	total := 0.0
	for k, p := range pdf {
		if k < 0 {
			return nil, fmt.Errorf("empirical effort requires non-negative day values, got %d", k)
		}
		if p > 0 {
			keys = append(keys, k)
			total += p
		}
	}
	if len(keys) == 0 || total <= 0 {
		return nil, fmt.Errorf("empirical effort requires at least one positive probability")
	}
	sort.Ints(keys)

	values := make([]int, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		cumulative += pdf[k] / total
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	cdf[len(cdf)-1] = 1.0

	return &EmpiricalEffort{values: values, cdf: cdf}, nil
}

func (s *EmpiricalEffort) Sample(rng *rand.Rand) int {
	if len(s.values) == 1 {
		return s.values[0]
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

// NewEffortSampler builds the named strategy from an EffortSpec.
// Unknown types and missing parameters are configuration errors.
func NewEffortSampler(spec EffortSpec) (EffortSampler, error) {
	switch spec.Type {
	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantEffort{value: int(spec.Params["value"])}, nil
	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		min, max := int(spec.Params["min"]), int(spec.Params["max"])
		if min < 0 || max < min {
			return nil, fmt.Errorf("uniform effort requires 0 <= min <= max, got [%d, %d]", min, max)
		}
		return &UniformEffort{min: min, max: max}, nil
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianEffort{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int(spec.Params["min"]),
			max:    int(spec.Params["max"]),
		}, nil
	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialEffort{mean: spec.Params["mean"]}, nil
	case "empirical":
		return NewEmpiricalEffort(spec.PDF)
	default:
		return nil, fmt.Errorf("unknown effort distribution type %q", spec.Type)
	}
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("effort distribution requires parameter %q", k)
		}
	}
	return nil
}
