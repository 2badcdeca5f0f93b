package l2warp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is an image coordinate: X is the column, Y the row.
type Point struct {
	X, Y float64
}

// Homography is a 3x3 projective transform in row-major order with H[8] == 1.
type Homography [9]float64

// NewHomography solves for the projective transform that maps each src point
// onto the corresponding dst point. It fails when the correspondence is
// degenerate (three or more collinear points).
func NewHomography(src, dst [4]Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		a.SetRow(i+4, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(i, u)
		b.SetVec(i+4, v)
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("degenerate point correspondence: %w", err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = c.AtVec(i)
	}
	h[8] = 1
	return h, nil
}

// Inverse returns the transform mapping dst back to src.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("homography is not invertible: %w", err)
	}

	var out Homography
	scale := inv.At(2, 2)
	if math.Abs(scale) < 1e-12 {
		scale = 1
	}
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			out[r*3+col] = inv.At(r, col) / scale
		}
	}
	return out, nil
}

// Apply maps (x, y) through the transform. ok is false for points that map
// to infinity.
func (h Homography) Apply(x, y float64) (u, v float64, ok bool) {
	w := h[6]*x + h[7]*y + h[8]
	if math.Abs(w) < 1e-12 {
		return 0, 0, false
	}
	u = (h[0]*x + h[1]*y + h[2]) / w
	v = (h[3]*x + h[4]*y + h[5]) / w
	return u, v, true
}
