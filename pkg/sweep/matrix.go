package sweep

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Matrix is the n x n result grid of a parameter sweep. Cell (i, j) holds
// the scalar result for (alpha_i, beta_j). It is owned exclusively by the
// orchestrator: written once per cell, never read until the grid is
// complete.
type Matrix struct {
	n    int
	vals []float64
}

// NewMatrix creates an n x n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, vals: make([]float64, n*n)}
}

// N returns the grid size per axis.
func (m *Matrix) N() int {
	return m.n
}

// Set stores the result of cell (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.vals[i*m.n+j] = v
}

// At returns the result of cell (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.vals[i*m.n+j]
}

// Write emits the matrix row-per-line, space-separated, with 3 decimal
// digits.
func (m *Matrix) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if j > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%.3f", m.At(i, j)); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save persists the matrix to the named file.
func (m *Matrix) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create result file")
	}
	defer f.Close()
	if err := m.Write(f); err != nil {
		return errors.Wrap(err, "could not write result matrix")
	}
	return nil
}
