package chart

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/trgrimm/t2-mewma/pkg/fsm"
)

// Scorer scores one observation at a time against a fitted chart's control
// limit
type Scorer interface {
	// Score returns the chart statistic for the next observation
	Score(x []float64) (float64, error)
	// Limit returns the control limit the statistic is compared against
	Limit() float64
	// Name identifies the chart
	Name() string
	// Reset clears any recursion state so monitoring can restart
	Reset()
}

var _ Scorer = &T2Scorer{}
var _ Scorer = &MEWMAScorer{}

// T2Scorer scores observations with the squared Mahalanobis distance of a
// fitted T² chart.  It is memoryless: each score depends only on the current
// observation.
type T2Scorer struct {
	mean  *mat.VecDense
	chol  mat.Cholesky
	limit float64
}

// NewT2Scorer builds a streaming scorer from a fitted T² chart
func NewT2Scorer(r *T2Result) (*T2Scorer, error) {
	var chol mat.Cholesky
	if !chol.Factorize(r.Estimate.Cov) {
		return nil, fmt.Errorf("fitted covariance could not be factorized")
	}
	return &T2Scorer{
		mean:  mat.VecDenseCopyOf(r.Estimate.Mean),
		chol:  chol,
		limit: r.Limit,
	}, nil
}

func (s *T2Scorer) Score(x []float64) (float64, error) {
	if len(x) != s.mean.Len() {
		return 0, fmt.Errorf("observation has %d variables, chart monitors %d", len(x), s.mean.Len())
	}
	d := stat.Mahalanobis(mat.NewVecDense(len(x), x), s.mean, &s.chol)
	return d * d, nil
}

func (s *T2Scorer) Limit() float64 { return s.limit }

func (s *T2Scorer) Name() string { return "t2" }

func (s *T2Scorer) Reset() {}

// MEWMAScorer scores observations with the smoothed quadratic form of a
// fitted MEWMA chart.  It carries the recursion state, so streaming a
// sequence scores identically to fitting it in one batch.
type MEWMAScorer struct {
	mean     *mat.VecDense
	chol     mat.Cholesky
	limit    float64
	lambda   float64
	q        *mat.VecDense
	centered *mat.VecDense
	zero     *mat.VecDense
}

// NewMEWMAScorer builds a streaming scorer from a fitted MEWMA chart with
// the recursion state at zero
func NewMEWMAScorer(r *MEWMAResult) (*MEWMAScorer, error) {
	p := r.Estimate.Dim()
	smoothedCov := mat.NewSymDense(p, nil)
	smoothedCov.ScaleSym(r.Lambda/(2-r.Lambda), r.Estimate.Cov)
	var chol mat.Cholesky
	if !chol.Factorize(smoothedCov) {
		return nil, fmt.Errorf("smoothed covariance could not be factorized")
	}
	return &MEWMAScorer{
		mean:     mat.VecDenseCopyOf(r.Estimate.Mean),
		chol:     chol,
		limit:    r.Limit,
		lambda:   r.Lambda,
		q:        mat.NewVecDense(p, nil),
		centered: mat.NewVecDense(p, nil),
		zero:     mat.NewVecDense(p, nil),
	}, nil
}

func (s *MEWMAScorer) Score(x []float64) (float64, error) {
	if len(x) != s.mean.Len() {
		return 0, fmt.Errorf("observation has %d variables, chart monitors %d", len(x), s.mean.Len())
	}
	s.centered.SubVec(mat.NewVecDense(len(x), x), s.mean)
	s.q.ScaleVec(1-s.lambda, s.q)
	s.q.AddScaledVec(s.q, s.lambda, s.centered)
	d := stat.Mahalanobis(s.q, s.zero, &s.chol)
	return d * d, nil
}

func (s *MEWMAScorer) Limit() float64 { return s.limit }

func (s *MEWMAScorer) Name() string { return "mewma" }

// Reset zeroes the recursion state
func (s *MEWMAScorer) Reset() {
	s.q.Zero()
}

// Monitor applies fitted chart scorers to a live stream of observations.
// Once any scorer's statistic exceeds its limit the monitor latches in the
// alarmed state until Reset re-arms it.
type Monitor struct {
	scorers []Scorer
	machine *fsm.Machine
	values  map[string]float64
	tripped map[string]bool
}

// NewMonitor returns an armed monitor over one or more scorers
func NewMonitor(scorers ...Scorer) (*Monitor, error) {
	if len(scorers) == 0 {
		return nil, fmt.Errorf("at least one scorer is required")
	}
	return &Monitor{
		scorers: scorers,
		machine: newMachine(),
		values:  make(map[string]float64),
		tripped: make(map[string]bool),
	}, nil
}

// Record scores the next observation with every scorer, transitioning to the
// alarmed state when a statistic exceeds its limit.  Scoring failures leave
// the monitor state unchanged.
func (m *Monitor) Record(x []float64) error {
	for _, s := range m.scorers {
		v, err := s.Score(x)
		if err != nil {
			return err
		}
		m.values[s.Name()] = v
		if v > s.Limit() {
			m.tripped[s.Name()] = true
			if m.machine.State() != Alarmed {
				if err := m.machine.Transition(Alarmed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// HasAlarmed returns true once any scorer has exceeded its limit.  It
// continues to return true until the monitor is reset.
func (m *Monitor) HasAlarmed() bool {
	return m.machine.State() == Alarmed
}

// State returns the current state of the monitor
func (m *Monitor) State() fsm.State {
	return m.machine.State()
}

// Values returns the most recent statistic for each chart
func (m *Monitor) Values() map[string]float64 {
	out := make(map[string]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Tripped returns the names of the charts that have alarmed since the last
// reset, in sorted order
func (m *Monitor) Tripped() []string {
	out := make([]string, 0, len(m.tripped))
	for k := range m.tripped {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset re-arms the monitor and clears every scorer's recursion state
func (m *Monitor) Reset() {
	m.machine.Reset()
	for _, s := range m.scorers {
		s.Reset()
	}
	m.values = make(map[string]float64)
	m.tripped = make(map[string]bool)
}
