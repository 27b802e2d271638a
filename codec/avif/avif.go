/*
NAME
  avif.go

DESCRIPTION
  avif.go converts linear-light Rec.2020 pixels (in cd/m²) to a 10-bit
  full-range BT.2100 non-constant-luminance Y'CbCr frame tagged
  SMPTE2084/BT2020/BT2020NCL, per spec.md §4.8, and hands the result to
  an Encoder sink.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package avif converts a linear-light Rec.2020 HDR image to a 10-bit
// PQ-encoded BT.2100 Y'CbCr frame and hands it to an external AVIF/AV1
// Encoder, per spec.md §4.8. This package does not itself implement an
// AV1 bitstream writer; Encoder is the integration seam for one.
package avif

import (
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// ST.2084 (PQ) inverse-EOTF constants, per spec.md §4.8.
const (
	pqM1 = 2610.0 / 16384.0
	pqM2 = 128.0 * 2523.0 / 4096.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = 32.0 * 2413.0 / 4096.0
	pqC3 = 32.0 * 2392.0 / 4096.0

	maxNits     = 10000.0
	bitDepthMax = 1023 // 10-bit full range.
)

// PQInverseEOTF applies the SMPTE ST.2084 inverse EOTF to a normalized
// linear sample x = v/10000 nits, per spec.md §4.8.
func PQInverseEOTF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	cp := math.Pow(x, pqM1)
	return math.Pow((pqC1+pqC2*cp)/(1+pqC3*cp), pqM2)
}

// ColorSpace describes the bitstream color tagging this package always
// produces, per spec.md §6.
type ColorSpace struct {
	Transfer  string
	Primaries string
	Matrix    string
	Range     string
}

// Rec2100ColorSpace is the fixed output tagging per spec.md §4.8/§6.
var Rec2100ColorSpace = ColorSpace{
	Transfer:  "SMPTE2084",
	Primaries: "BT2020",
	Matrix:    "BT2020NCL",
	Range:     "Full",
}

// Frame is a planar 10-bit Y'CbCr buffer ready to hand to an Encoder.
type Frame struct {
	Width, Height int
	Y, Cb, Cr     []uint16 // each sample in [0, 1023].
	Space         ColorSpace
}

// DefaultQuality and DefaultSpeed are the encoder settings spec.md §6
// fixes for Ultra HDR output: quality 100, encoder speed 4.
const (
	DefaultQuality = 100
	DefaultSpeed   = 4
)

// Encoder is the external AVIF/AV1 encoding sink, per spec.md §4.8/§5:
// an opaque collaborator the orchestrator hands the finished frame to.
// No AV1 bitstream encoder appears anywhere in the example pack, so
// this package defines only the seam; a real implementation supplies a
// concrete Encoder (e.g. wrapping libaom or rav1e via cgo).
type Encoder interface {
	EncodeFrame(w io.Writer, f *Frame, quality, speed int) error
}

// quantize rounds a [0,1] sample to a 10-bit full-range code value.
func quantize(v float64) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint16(math.Round(v * bitDepthMax))
}

// FromLinearRec2020 converts a linear-light Rec.2020 image (cd/m²,
// row-major RGB triples) to a 10-bit PQ BT.2100-NCL Y'CbCr Frame, per
// spec.md §4.8.
func FromLinearRec2020(width, height int, rgbNits []float32) (*Frame, error) {
	if len(rgbNits) != width*height*3 {
		return nil, errors.Wrapf(uhdrerr.ContainerFormat,
			"avif: pixel buffer has %d samples, want %d for %dx%d RGB", len(rgbNits), width*height*3, width, height)
	}

	f := &Frame{
		Width: width, Height: height,
		Y:     make([]uint16, width*height),
		Cb:    make([]uint16, width*height),
		Cr:    make([]uint16, width*height),
		Space: Rec2100ColorSpace,
	}

	for i := 0; i < width*height; i++ {
		r := clampNits(float64(rgbNits[i*3+0]))
		g := clampNits(float64(rgbNits[i*3+1]))
		b := clampNits(float64(rgbNits[i*3+2]))

		rp := PQInverseEOTF(r / maxNits)
		gp := PQInverseEOTF(g / maxNits)
		bp := PQInverseEOTF(b / maxNits)

		yp := 0.2627*rp + 0.6780*gp + 0.0593*bp
		cb := (bp-yp)/1.8814 + 0.5
		cr := (rp-yp)/1.4746 + 0.5

		f.Y[i] = quantize(yp)
		f.Cb[i] = quantize(cb)
		f.Cr[i] = quantize(cr)
	}

	return f, nil
}

func clampNits(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxNits {
		return maxNits
	}
	return v
}
