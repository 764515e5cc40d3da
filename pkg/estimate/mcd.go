package estimate

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	defaultTrials = 500
	keepBest      = 10
	initialCSteps = 2
	maxCSteps     = 100
	logDetTol     = 1e-12
	reweightProb  = 0.975
)

// candidate is an h-subset solution: the statistics of the covered
// observations and the log-determinant of their covariance
type candidate struct {
	mean   *mat.VecDense
	cov    *mat.SymDense
	chol   mat.Cholesky
	logdet float64
}

// robust computes the reweighted minimum covariance determinant estimate with
// the FAST-MCD subsampling algorithm: many random starts are concentrated for
// two steps each, the lowest-determinant candidates are iterated to
// convergence, and the winning raw estimate is rescaled and reweighted.  Both
// the raw and reweighted scatters are rescaled by asymptotic consistency
// factors so they estimate the covariance under normality.
func robust(d *mat.Dense, cfg config) (*Estimate, error) {
	n, p := d.Dims()

	h := cfg.subset
	if h == 0 {
		h = (n + p + 1) / 2
	}
	if hmin := (n + p + 1) / 2; h < hmin || h > n {
		return nil, fmt.Errorf("subset size %d out of range [%d, %d] for %d observations x %d variables", h, hmin, n, n, p)
	}
	// covering every observation reduces to the classical estimate
	if h == n {
		return classical(d)
	}

	r := rand.New(rand.NewSource(cfg.seed))
	dists := make([]float64, n)

	var best []candidate
	for t := 0; t < cfg.trials; t++ {
		cand, err := seedCandidate(d, r)
		if err != nil {
			return nil, err
		}
		for s := 0; s < initialCSteps; s++ {
			cand, err = concentrate(d, cand, h, dists)
			if err != nil {
				return nil, err
			}
		}
		best = insertBest(best, cand)
	}

	var raw candidate
	for i, cand := range best {
		c, err := converge(d, cand, h, dists)
		if err != nil {
			return nil, err
		}
		if i == 0 || c.logdet < raw.logdet {
			raw = c
		}
	}

	rawCov := mat.NewSymDense(p, nil)
	rawCov.ScaleSym(consistency(float64(h)/float64(n), p), raw.cov)
	var chol mat.Cholesky
	if !chol.Factorize(rawCov) {
		return nil, SingularCovariance{Rows: n, Cols: p}
	}

	// reweight: refit on the observations that are not outlying under the
	// raw estimate
	squaredDistances(d, raw.mean, &chol, dists)
	cutoff := distuv.ChiSquared{K: float64(p)}.Quantile(reweightProb)
	var keep []int
	for i, dist := range dists {
		if dist <= cutoff {
			keep = append(keep, i)
		}
	}
	if len(keep) <= p {
		return nil, SingularCovariance{Rows: n, Cols: p}
	}

	mean, cov := subsetStats(d, keep)
	scaled := mat.NewSymDense(p, nil)
	scaled.ScaleSym(consistency(reweightProb, p), cov)
	var check mat.Cholesky
	if !check.Factorize(scaled) {
		return nil, SingularCovariance{Rows: n, Cols: p}
	}
	return &Estimate{Mean: mean, Cov: scaled}, nil
}

// seedCandidate draws a random (p+1)-subset and grows it until its covariance
// is nonsingular.  If the subset grows to cover every observation and is still
// singular, the data itself is degenerate.
func seedCandidate(d *mat.Dense, r *rand.Rand) (candidate, error) {
	n, p := d.Dims()
	perm := r.Perm(n)
	for size := p + 1; size <= n; size++ {
		if cand, ok := newCandidate(d, perm[:size]); ok {
			return cand, nil
		}
	}
	return candidate{}, SingularCovariance{Rows: n, Cols: p}
}

// concentrate performs one C-step: cover the h observations closest to the
// candidate and recompute its statistics.  The covariance determinant never
// increases.
func concentrate(d *mat.Dense, cand candidate, h int, dists []float64) (candidate, error) {
	n, p := d.Dims()
	squaredDistances(d, cand.mean, &cand.chol, dists)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return dists[idx[a]] < dists[idx[b]] })
	next, ok := newCandidate(d, idx[:h])
	if !ok {
		return candidate{}, SingularCovariance{Rows: n, Cols: p}
	}
	return next, nil
}

// converge iterates C-steps until the covariance determinant stops improving
func converge(d *mat.Dense, cand candidate, h int, dists []float64) (candidate, error) {
	for i := 0; i < maxCSteps; i++ {
		next, err := concentrate(d, cand, h, dists)
		if err != nil {
			return candidate{}, err
		}
		if next.logdet >= cand.logdet-logDetTol {
			return next, nil
		}
		cand = next
	}
	return cand, nil
}

// newCandidate builds a candidate from the rows of d indexed by idx, failing
// when the subset covariance cannot be factorized
func newCandidate(d *mat.Dense, idx []int) (candidate, bool) {
	mean, cov := subsetStats(d, idx)
	var chol mat.Cholesky
	if !chol.Factorize(cov) {
		return candidate{}, false
	}
	return candidate{mean: mean, cov: cov, chol: chol, logdet: chol.LogDet()}, true
}

// subsetStats computes the sample mean and covariance of the rows of d
// indexed by idx
func subsetStats(d *mat.Dense, idx []int) (*mat.VecDense, *mat.SymDense) {
	_, p := d.Dims()
	sub := mat.NewDense(len(idx), p, nil)
	row := make([]float64, p)
	for k, i := range idx {
		sub.SetRow(k, mat.Row(row, i, d))
	}

	mean := mat.NewVecDense(p, nil)
	col := make([]float64, len(idx))
	for j := 0; j < p; j++ {
		mat.Col(col, j, sub)
		mean.SetVec(j, stat.Mean(col, nil))
	}
	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, sub, nil)
	return mean, cov
}

// squaredDistances fills dst with the squared Mahalanobis distance of every
// row of d from mean under the factorized covariance
func squaredDistances(d *mat.Dense, mean *mat.VecDense, chol *mat.Cholesky, dst []float64) {
	n, _ := d.Dims()
	for i := 0; i < n; i++ {
		dist := stat.Mahalanobis(d.RowView(i), mean, chol)
		dst[i] = dist * dist
	}
}

// insertBest keeps the lowest-determinant candidates seen so far, ascending
func insertBest(best []candidate, cand candidate) []candidate {
	i := sort.Search(len(best), func(i int) bool { return best[i].logdet >= cand.logdet })
	if i >= keepBest {
		return best
	}
	best = append(best, candidate{})
	copy(best[i+1:], best[i:])
	best[i] = cand
	if len(best) > keepBest {
		best = best[:keepBest]
	}
	return best
}

// consistency makes a truncated scatter estimate consistent for the
// covariance under normality: alpha over the chi-squared (p+2) CDF at the
// chi-squared (p) alpha-quantile
func consistency(alpha float64, p int) float64 {
	q := distuv.ChiSquared{K: float64(p)}.Quantile(alpha)
	return alpha / distuv.ChiSquared{K: float64(p) + 2}.CDF(q)
}
