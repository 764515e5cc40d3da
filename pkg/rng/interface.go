package rng

// VectorRNG is a random vector generator
type VectorRNG interface {
	Rand() []float64
}
