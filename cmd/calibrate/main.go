// Verifies the Markov chain control limits for the MEWMA chart by Monte
// Carlo simulation.  For each (dimension, lambda) cell it solves for the
// limit targeting ARL, then streams standard normal observations through a
// monitor with exact in-control parameters and reports the observed average
// run length.
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/trgrimm/t2-mewma/pkg/chart"
	"github.com/trgrimm/t2-mewma/pkg/estimate"
	"github.com/trgrimm/t2-mewma/pkg/limit"
	"github.com/trgrimm/t2-mewma/pkg/rng"
)

const (
	Loops int     = 2000
	Cap   int     = 200000
	ARL   float64 = 200
)

var wg sync.WaitGroup

type results struct {
	name string
	mu   sync.Mutex
	val  map[string]float64
}

func (r *results) record(cell string, arl float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.val[cell] = arl
}

func newResults(name string) *results {
	return &results{
		name: name,
		val:  make(map[string]float64),
	}
}

func main() {
	res := newResults("mewma-arl")
	start := time.Now()
	for _, p := range []int{2, 3, 5} {
		for _, lambda := range []float64{0.1, 0.25, 0.5, 1.0} {
			wg.Add(1)
			log.Printf("start p=%d lambda=%.2f\n", p, lambda)
			go runLength(res, p, lambda)
		}
	}
	wg.Wait()
	fmt.Printf("Time Elapsed: %v\n", time.Since(start))
	var b bytes.Buffer
	for cell, arl := range res.val {
		b.WriteString(fmt.Sprintf("%s %f\n", cell, arl))
	}
	os.WriteFile(fmt.Sprintf("%s.txt", res.name), b.Bytes(), 0644)
}

func runLength(res *results, p int, lambda float64) {
	defer wg.Done()
	h, err := limit.MEWMA(lambda, ARL, p)
	if err != nil {
		log.Fatalf("unexpected error solving for control limit: %v", err)
	}

	eye := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		eye.SetSym(i, i, 1)
	}
	fit := &chart.MEWMAResult{
		Limit:    h,
		Lambda:   lambda,
		Estimate: &estimate.Estimate{Mean: mat.NewVecDense(p, nil), Cov: eye},
	}

	total := 0
	for i := 0; i < Loops; i++ {
		sc, err := chart.NewMEWMAScorer(fit)
		if err != nil {
			log.Fatalf("unexpected error constructing scorer: %v", err)
		}
		mon, err := chart.NewMonitor(sc)
		if err != nil {
			log.Fatalf("unexpected error constructing monitor: %v", err)
		}
		g, err := rng.NewStandardNormal(p, uint64(i)+1)
		if err != nil {
			log.Fatalf("unexpected error constructing generator: %v", err)
		}

		n := 0
		for !mon.HasAlarmed() && n < Cap {
			if err := mon.Record(g.Rand()); err != nil {
				log.Fatalf("unexpected error recording value: %v", err)
			}
			n++
		}
		total += n
	}
	observed := float64(total) / float64(Loops)
	cell := fmt.Sprintf("p=%d lambda=%.2f", p, lambda)
	fmt.Printf("Result: %s h=%.4f arl=%.1f\n", cell, h, observed)
	res.record(cell, observed)
}
