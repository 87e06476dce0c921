package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"channelpulse/pkg/contracts/domain"
)

// MinNormalitySamples is the smallest sample the omnibus test accepts
const MinNormalitySamples = 8

// NormalityTest is the D'Agostino-Pearson omnibus result
type NormalityTest struct {
	Defined   bool    `json:"defined"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	// Normal is true when the test fails to reject normality at NormalityAlpha
	Normal bool `json:"normal"`
}

// NormalTest combines the skewness and kurtosis z-scores into K2, which is
// chi-squared with two degrees of freedom under the null hypothesis.
func NormalTest(x []float64) (NormalityTest, error) {
	if len(x) < MinNormalitySamples {
		return NormalityTest{}, fmt.Errorf("normality test needs at least %d samples, got %d: %w",
			MinNormalitySamples, len(x), domain.ErrInsufficientData)
	}
	if isConstant(x) {
		return NormalityTest{}, fmt.Errorf("normality test undefined for constant data: %w", domain.ErrInsufficientData)
	}

	n := float64(len(x))
	m2 := stat.Moment(2, x, nil)
	b1 := stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
	b2 := stat.Moment(4, x, nil) / (m2 * m2)

	zs := skewZ(b1, n)
	zk := kurtosisZ(b2, n)
	k2 := zs*zs + zk*zk
	if math.IsNaN(k2) || math.IsInf(k2, 0) {
		return NormalityTest{}, fmt.Errorf("normality test statistic is not finite: %w", domain.ErrInsufficientData)
	}

	p := distuv.ChiSquared{K: 2}.Survival(k2)
	return NormalityTest{
		Defined:   true,
		Statistic: k2,
		PValue:    p,
		Normal:    p >= NormalityAlpha,
	}, nil
}

// skewZ transforms sample skewness to an approximately standard normal score
func skewZ(b1, n float64) float64 {
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	return delta * math.Asinh(y/alpha)
}

// kurtosisZ is the Anscombe-Glynn transform of sample kurtosis (non-excess)
func kurtosisZ(b2, n float64) float64 {
	mean := 3 * (n - 1) / (n + 1)
	variance := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - mean) / math.Sqrt(variance)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) *
		math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))

	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
