package mathx

import (
	"math"

	"github.com/wippyai/native-host/errors"
)

// Matrix is a dense row-major matrix. Rows must all have the same
// length; the kernels below validate that before touching elements.
type Matrix [][]float64

const singularEps = 1e-10

func requireRectangular(m Matrix) (rows, cols int, err error) {
	rows = len(m)
	if rows == 0 {
		return 0, 0, errors.Validation(errors.PhaseMath, "empty matrix")
	}
	cols = len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, errors.Validation(errors.PhaseMath, "ragged matrix: row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return rows, cols, nil
}

func requireSquare(m Matrix) (int, error) {
	rows, cols, err := requireRectangular(m)
	if err != nil {
		return 0, err
	}
	if rows != cols {
		return 0, errors.Validation(errors.PhaseMath, "matrix is %dx%d, want square", rows, cols)
	}
	return rows, nil
}

func newMatrix(rows, cols int) Matrix {
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Transpose returns m flipped across its diagonal.
func Transpose(m Matrix) (Matrix, error) {
	rows, cols, err := requireRectangular(m)
	if err != nil {
		return nil, err
	}
	out := newMatrix(cols, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out, nil
}

// MatMul returns the product a*b. The column count of a must match the
// row count of b.
func MatMul(a, b Matrix) (Matrix, error) {
	rowsA, colsA, err := requireRectangular(a)
	if err != nil {
		return nil, err
	}
	rowsB, colsB, err := requireRectangular(b)
	if err != nil {
		return nil, err
	}
	if colsA != rowsB {
		return nil, errors.Validation(errors.PhaseMath, "cannot multiply %dx%d by %dx%d", rowsA, colsA, rowsB, colsB)
	}
	out := newMatrix(rowsA, colsB)
	for i := 0; i < rowsA; i++ {
		for j := 0; j < colsB; j++ {
			var sum float64
			for k := 0; k < colsA; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out, nil
}

// Determinant computes det(m) by Gaussian elimination with partial
// pivoting. A matrix whose pivot falls below the singularity threshold
// has determinant zero.
func Determinant(m Matrix) (float64, error) {
	n, err := requireSquare(m)
	if err != nil {
		return 0, err
	}

	tmp := newMatrix(n, n)
	for i := range m {
		copy(tmp[i], m[i])
	}

	det := 1.0
	for i := 0; i < n; i++ {
		maxRow := i
		for k := i + 1; k < n; k++ {
			if math.Abs(tmp[k][i]) > math.Abs(tmp[maxRow][i]) {
				maxRow = k
			}
		}
		if maxRow != i {
			tmp[i], tmp[maxRow] = tmp[maxRow], tmp[i]
			det = -det
		}
		if math.Abs(tmp[i][i]) < singularEps {
			return 0, nil
		}
		det *= tmp[i][i]
		for k := i + 1; k < n; k++ {
			factor := tmp[k][i] / tmp[i][i]
			for j := i; j < n; j++ {
				tmp[k][j] -= factor * tmp[i][j]
			}
		}
	}
	return det, nil
}

// Inverse computes the inverse of m by Gauss-Jordan elimination on the
// augmented matrix [m | I]. Singular matrices are rejected.
func Inverse(m Matrix) (Matrix, error) {
	n, err := requireSquare(m)
	if err != nil {
		return nil, err
	}

	aug := newMatrix(n, 2*n)
	for i := 0; i < n; i++ {
		copy(aug[i], m[i])
		aug[i][i+n] = 1
	}

	for i := 0; i < n; i++ {
		maxRow := i
		for k := i + 1; k < n; k++ {
			if math.Abs(aug[k][i]) > math.Abs(aug[maxRow][i]) {
				maxRow = k
			}
		}
		aug[i], aug[maxRow] = aug[maxRow], aug[i]

		if math.Abs(aug[i][i]) < singularEps {
			return nil, errors.Validation(errors.PhaseMath, "matrix is singular")
		}

		pivot := aug[i][i]
		for j := 0; j < 2*n; j++ {
			aug[i][j] /= pivot
		}
		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			factor := aug[k][i]
			for j := 0; j < 2*n; j++ {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	out := newMatrix(n, n)
	for i := 0; i < n; i++ {
		copy(out[i], aug[i][n:])
	}
	return out, nil
}
