/*
NAME
  matrix.go

DESCRIPTION
  matrix.go implements the row-major 3x3 matrix algebra spec.md §4.5
  needs: inversion guarded by a determinant singularity check, and the
  row-vector-times-matrix product used throughout the color pipeline.
  Matrices are backed by gonum/mat.Dense so that the linear algebra
  itself -- determinant, inverse -- is the well-tested gonum
  implementation; only the domain-specific singularity threshold and
  row-vector convention are specified here.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package colormath implements the matrix and chromaticity algebra
// shared by the ICC reader and the gamut-conversion stage of the Ultra
// HDR pipeline: 3x3 inversion/multiplication, CIE xyY<->XYZ conversion,
// and RGB<->XYZ construction with white-point scaling.
package colormath

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// singularEpsilon is the determinant-magnitude threshold below which a
// 3x3 matrix is treated as singular, per spec.md §4.5.
const singularEpsilon = 1e-10

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Vec3 is a row vector.
type Vec3 [3]float64

// dense returns m as a gonum *mat.Dense, row-major.
func (m Mat3) dense() *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m[i][j])
		}
	}
	return d
}

func fromDense(d mat.Matrix) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// Determinant returns det(m).
func (m Mat3) Determinant() float64 {
	return mat.Det(m.dense())
}

// Inverse returns the inverse of m, or an error wrapping
// uhdrerr.Math if m is singular (|det| < 1e-10).
func (m Mat3) Inverse() (Mat3, error) {
	det := m.Determinant()
	if abs(det) < singularEpsilon {
		return Mat3{}, uhdrerr.Math
	}
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Mat3{}, uhdrerr.Math
	}
	return fromDense(&inv), nil
}

// Mul returns the row vector v * m, i.e. (v*m)[j] = sum_i v[i]*m[i][j],
// per spec.md §4.5.
func (m Mat3) Mul(v Vec3) Vec3 {
	var out Vec3
	for j := 0; j < 3; j++ {
		var s float64
		for i := 0; i < 3; i++ {
			s += v[i] * m[i][j]
		}
		out[j] = s
	}
	return out
}

// Scale returns v with each component j multiplied by s[j]; this is how
// the diagonal chromatic-adaptation scale of spec.md §4.5 is applied to
// XYZ.
func (v Vec3) Scale(s Vec3) Vec3 {
	return Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
