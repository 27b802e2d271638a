/*
NAME
  curve.go

DESCRIPTION
  curve.go implements ICC tone-reproduction curves: parametricCurveType
  (function types 0-4) and curveType (identity, single gamma, or a
  sampled lookup table), per spec.md §4.3.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package icc

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// ToneCurve maps a normalized [0,1] sample through a tone-reproduction
// curve. Eval is expected to be monotonic over [0,1].
type ToneCurve interface {
	Eval(x float64) float64
}

// ParametricCurve implements ICC parametricCurveType function types
// 0 through 4. Unused parameters are zero.
type ParametricCurve struct {
	FuncType            uint16
	G, A, B, C, D, E, F float64
}

// Eval implements ToneCurve per the ICC.1 parametricCurveType formulas.
func (p ParametricCurve) Eval(x float64) float64 {
	switch p.FuncType {
	case 0:
		return math.Pow(x, p.G)
	case 1:
		if x >= -p.B/p.A {
			return math.Pow(p.A*x+p.B, p.G)
		}
		return 0
	case 2:
		if x >= -p.B/p.A {
			return math.Pow(p.A*x+p.B, p.G) + p.C
		}
		return p.C
	case 3:
		if x >= p.D {
			return math.Pow(p.A*x+p.B, p.G)
		}
		return p.C * x
	case 4:
		if x >= p.D {
			return math.Pow(p.A*x+p.B, p.G) + p.E
		}
		return p.C*x + p.F
	default:
		return x
	}
}

// TableCurve implements ICC curveType: an empty table is the identity
// transform, a single-entry table is a gamma exponent encoded as a
// u8Fixed8Number, and a multi-entry table is a sampled LUT over
// [0,1] evaluated with linear interpolation.
type TableCurve struct {
	Gamma   float64 // used only when len(Samples) == 1
	Samples []float64
}

// Eval implements ToneCurve.
func (t TableCurve) Eval(x float64) float64 {
	switch len(t.Samples) {
	case 0:
		return x
	case 1:
		return math.Pow(x, t.Gamma)
	default:
		n := len(t.Samples)
		pos := x * float64(n-1)
		if pos <= 0 {
			return t.Samples[0]
		}
		if pos >= float64(n-1) {
			return t.Samples[n-1]
		}
		i0 := int(pos)
		frac := pos - float64(i0)
		return t.Samples[i0]*(1-frac) + t.Samples[i0+1]*frac
	}
}

// decodeCurve dispatches on an ICC tag's 4-byte type signature and
// decodes it into a ToneCurve.
func decodeCurve(tag []byte) (ToneCurve, error) {
	if len(tag) < 8 {
		return nil, errors.Wrap(uhdrerr.Metadata, "icc: curve tag too short")
	}
	switch string(tag[0:4]) {
	case "para":
		return decodeParametricCurve(tag)
	case "curv":
		return decodeTableCurve(tag)
	default:
		return nil, errors.Wrapf(uhdrerr.Metadata, "icc: unsupported curve tag type %q", tag[0:4])
	}
}

func decodeParametricCurve(tag []byte) (ToneCurve, error) {
	if len(tag) < 12 {
		return nil, errors.Wrap(uhdrerr.Metadata, "icc: parametricCurveType too short")
	}
	funcType := binary.BigEndian.Uint16(tag[8:10])
	params := tag[12:]

	nParams := map[uint16]int{0: 1, 1: 3, 2: 4, 3: 5, 4: 7}[funcType]
	if len(params) < nParams*4 {
		return nil, errors.Wrap(uhdrerr.Metadata, "icc: parametricCurveType truncated parameters")
	}

	read := func(i int) float64 { return s15Fixed16(params[i*4 : i*4+4]) }

	c := ParametricCurve{FuncType: funcType}
	switch funcType {
	case 0:
		c.G = read(0)
	case 1:
		c.G, c.A, c.B = read(0), read(1), read(2)
	case 2:
		c.G, c.A, c.B, c.C = read(0), read(1), read(2), read(3)
	case 3:
		c.G, c.A, c.B, c.C, c.D = read(0), read(1), read(2), read(3), read(4)
	case 4:
		c.G, c.A, c.B, c.C, c.D, c.E, c.F = read(0), read(1), read(2), read(3), read(4), read(5), read(6)
	default:
		return nil, errors.Wrapf(uhdrerr.Metadata, "icc: unsupported parametricCurveType function type %d", funcType)
	}
	return c, nil
}

func decodeTableCurve(tag []byte) (ToneCurve, error) {
	if len(tag) < 12 {
		return nil, errors.Wrap(uhdrerr.Metadata, "icc: curveType too short")
	}
	count := binary.BigEndian.Uint32(tag[8:12])
	switch count {
	case 0:
		return TableCurve{}, nil
	case 1:
		if len(tag) < 14 {
			return nil, errors.Wrap(uhdrerr.Metadata, "icc: curveType gamma entry truncated")
		}
		raw := binary.BigEndian.Uint16(tag[12:14])
		return TableCurve{Gamma: float64(raw) / 256.0, Samples: []float64{1}}, nil
	default:
		need := 12 + int(count)*2
		if len(tag) < need {
			return nil, errors.Wrap(uhdrerr.Metadata, "icc: curveType LUT truncated")
		}
		samples := make([]float64, count)
		for i := uint32(0); i < count; i++ {
			raw := binary.BigEndian.Uint16(tag[12+i*2 : 12+i*2+2])
			samples[i] = float64(raw) / 65535.0
		}
		return TableCurve{Samples: samples}, nil
	}
}
