/*
NAME
  uhdrjpeg.go

DESCRIPTION
  uhdrjpeg.go wraps the stdlib image/jpeg decoder with the Ultra HDR
  facade spec.md §4.6 requires: extent, ICC color-space derivation,
  borrowed XMP/MPF segment bytes, gain-map sub-JPEG extraction, and
  per-pixel fetch in both gamma-encoded and linear-light form.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uhdrjpeg wraps a JPEG byte stream with the operations an
// Ultra HDR pipeline needs: marker-segment access (ICC/XMP/MPF),
// gain-map sub-image extraction, and gamma/linear pixel fetch with
// texel-center-biased bilinear sampling.
package uhdrjpeg

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/container/mpf"
	"github.com/ausocean/uhdr2avif/icc"
	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// gammaFallback is the default EOTF exponent applied when no ICC tone
// curve is available, per spec.md §4.6.
const gammaFallback = 2.2

// UhdrJpeg is a decoded JPEG together with its borrowed marker-segment
// byte ranges, per spec.md §3. The ICC/XMP/MPF slices are views
// into the byte buffer the caller passed to Parse; that buffer must
// outlive the UhdrJpeg, per spec.md §5's ownership note.
type UhdrJpeg struct {
	img      image.Image
	width    int
	height   int
	iccBytes []byte
	xmp      []byte
	mpf      []byte
	space    *icc.IccColorSpace // nil if no ICC profile or ICC reading failed softly
}

// Parse decodes a JPEG byte stream and locates its APPn marker
// segments, per spec.md §4.6. data is borrowed, not copied.
func Parse(data []byte) (*UhdrJpeg, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "uhdrjpeg: "+err.Error())
	}

	segs, err := scanSegments(data)
	if err != nil {
		return nil, err
	}

	u := &UhdrJpeg{
		img:      img,
		width:    img.Bounds().Dx(),
		height:   img.Bounds().Dy(),
		iccBytes: segs.icc,
		xmp:      segs.xmp,
		mpf:      segs.mpf,
	}

	if segs.icc != nil {
		space, err := icc.Read(segs.icc)
		if err != nil {
			return nil, err
		}
		u.space = space
	}

	return u, nil
}

// Extent returns the image's pixel dimensions, per spec.md §4.6.
func (u *UhdrJpeg) Extent() (w, h int) { return u.width, u.height }

// IccColorSpace returns the ICC-derived color space, or nil if the
// image has no ICC profile (or none that yielded a usable white
// point), per spec.md §4.3's "returns Some iff..." contract.
func (u *UhdrJpeg) IccColorSpace() *icc.IccColorSpace { return u.space }

// XmpBytes returns the borrowed XMP packet bytes, or nil if absent.
func (u *UhdrJpeg) XmpBytes() []byte { return u.xmp }

// MpfBytes returns the borrowed MPF payload bytes, or nil if absent.
func (u *UhdrJpeg) MpfBytes() []byte { return u.mpf }

// ExtractGainMap locates and wraps the gain-map sub-JPEG within
// originalBytes, per spec.md §4.2/§4.6. It requires at least two MPF
// entries; ok is false (with a nil error) otherwise, matching the
// spec's "warns and returns None" contract -- callers are expected to
// log the warning themselves.
func (u *UhdrJpeg) ExtractGainMap(originalBytes []byte) (sub *UhdrJpeg, ok bool, err error) {
	if u.mpf == nil {
		return nil, false, nil
	}
	entries, err := mpf.Parse(u.mpf)
	if err != nil {
		return nil, false, err
	}
	if len(entries) < 2 {
		return nil, false, nil
	}
	start, end, err := mpf.GainMapRange(entries, len(originalBytes))
	if err != nil {
		return nil, false, err
	}
	sub, err = Parse(originalBytes[start:end])
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// FetchPixel returns the 8-bit RGB pixel at (x,y) normalized to [0,1],
// per spec.md §4.6. A grayscale (Luma) source broadcasts to R=G=B.
func (u *UhdrJpeg) FetchPixel(x, y int) [3]float32 {
	b := u.img.Bounds()
	r, g, bl, _ := u.img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return [3]float32{
		float32(r) / 65535.0,
		float32(g) / 65535.0,
		float32(bl) / 65535.0,
	}
}

// FetchPixelLinear returns the linear-light RGB pixel at (x,y), per
// spec.md §4.6: ICC tone curves are applied per channel if present,
// otherwise a gamma-2.2 EOTF is applied.
func (u *UhdrJpeg) FetchPixelLinear(x, y int) [3]float32 {
	px := u.FetchPixel(x, y)
	var out [3]float32
	for c := 0; c < 3; c++ {
		if u.space != nil {
			out[c] = float32(u.space.Transfer.Eval(c, float64(px[c])))
		} else {
			out[c] = float32(math.Pow(float64(px[c]), gammaFallback))
		}
	}
	return out
}

// SampleBilinear performs texel-center-biased bilinear sampling in
// linear light at normalized coordinates (u,v), per spec.md §4.6. ok is
// always true; out-of-range neighbors contribute a zero sample rather
// than failing, per spec.md §7's recovery policy.
func (u *UhdrJpeg) SampleBilinear(nu, nv float64) (out [3]float32, ok bool) {
	x := nu * float64(u.width)
	y := nv * float64(u.height)

	baseX := bilinearBase(x, u.width)
	baseY := bilinearBase(y, u.height)

	s := clamp01(x - float64(baseX))
	t := clamp01(y - float64(baseY))

	c00 := u.linearAt(baseX, baseY)
	c10 := u.linearAt(baseX+1, baseY)
	c01 := u.linearAt(baseX, baseY+1)
	c11 := u.linearAt(baseX+1, baseY+1)

	for c := 0; c < 3; c++ {
		top := c00[c]*float32(1-s) + c10[c]*float32(s)
		bot := c01[c]*float32(1-s) + c11[c]*float32(s)
		out[c] = top*float32(1-t) + bot*float32(t)
	}
	return out, true
}

// bilinearBase computes the clamped base texel index for coordinate x
// over an axis of length n, per spec.md §4.6/§9: floor(x)-1 if the
// fractional part is below 0.5, else floor(x), uniformly (the spec's
// own reference implementation disagreed between branches; §9 resolves
// this to the floor(x)-1 form throughout).
func bilinearBase(x float64, n int) int {
	fx := math.Floor(x)
	frac := x - fx
	base := int(fx)
	if frac < 0.5 {
		base--
	}
	if base < 0 {
		base = 0
	}
	if base > n-1 {
		base = n - 1
	}
	return base
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// linearAt returns the linear-light pixel at (x,y), or zero if (x,y)
// lies outside the image, per spec.md §4.6's out-of-range contribution
// rule.
func (u *UhdrJpeg) linearAt(x, y int) [3]float32 {
	if x < 0 || y < 0 || x >= u.width || y >= u.height {
		return [3]float32{}
	}
	return u.FetchPixelLinear(x, y)
}
