/*
NAME
  gamut.go

DESCRIPTION
  gamut.go implements CIE xyY<->XYZ conversion, RGB<->XYZ matrix
  construction from a set of primaries, and the von-Kries-style diagonal
  chromatic adaptation used when converting linear RGB between gamuts,
  per spec.md §4.5. It also defines the canonical ColorGamut constants
  named in spec.md §3.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package colormath

// XyY is a CIE chromaticity coordinate with relative luminance weight Y.
type XyY struct {
	X, Y, LumaY float64
}

// ColorPrimaries holds the three CIE xyY chromaticities of a gamut's
// red, green and blue primaries.
type ColorPrimaries struct {
	Red, Green, Blue XyY
}

// ColorGamut is a set of primaries plus a white point, per spec.md §3.
type ColorGamut struct {
	Primaries ColorPrimaries
	White     XyY
}

// Canonical gamuts named in spec.md §3. The per-primary luminance
// weights (the Y component of each primary's xyY) are solved from the
// bare chromaticities and the white point rather than hardcoded, using
// the same linear system an ICC profile's rXYZ/gXYZ/bXYZ tags encode
// implicitly -- this is what makes self-conversion and white-point
// preservation hold exactly for these built-in gamuts.
var (
	d65White = XyY{0.3127, 0.3290, 1}
	d50White = XyY{0.3457, 0.3585, 1}

	// GamutSRGB is sRGB/Rec.709 primaries with a D65 white point.
	GamutSRGB = newCanonicalGamut(0.640, 0.330, 0.300, 0.600, 0.150, 0.060, d65White)

	// GamutRec2020 is Rec.2020 primaries with a D65 white point.
	GamutRec2020 = newCanonicalGamut(0.708, 0.292, 0.170, 0.797, 0.131, 0.046, d65White)

	// GamutProPhoto is ProPhoto RGB primaries with a D50 white point.
	GamutProPhoto = newCanonicalGamut(0.7347, 0.2653, 0.1596, 0.8404, 0.0366, 0.0001, d50White)
)

// newCanonicalGamut derives a ColorGamut's correctly weighted primaries
// from bare chromaticity coordinates and a white point.
func newCanonicalGamut(rx, ry, gx, gy, bx, by float64, white XyY) ColorGamut {
	return ColorGamut{
		Primaries: PrimariesFromChromaticity(rx, ry, gx, gy, bx, by, white),
		White:     white,
	}
}

// PrimariesFromChromaticity derives correctly weighted primaries from
// bare (x,y) chromaticity coordinates and a white point, by solving
// S*M = White for the diagonal luminance weights S, where M is the
// matrix of unit-Y (Y=1) primaries. This is the same derivation an ICC
// profile's rXYZ/gXYZ/bXYZ matrix/TRC tags bake in already, used here
// for sources -- like an ICC Chromaticity tag -- that supply only bare
// (x,y) pairs.
func PrimariesFromChromaticity(rx, ry, gx, gy, bx, by float64, white XyY) ColorPrimaries {
	unit := ColorPrimaries{
		Red:   XyY{rx, ry, 1},
		Green: XyY{gx, gy, 1},
		Blue:  XyY{bx, by, 1},
	}
	m := RGBToXYZMatrix(unit)
	minv, err := m.Inverse()
	if err != nil {
		// Bare chromaticities forming a singular unit matrix indicate
		// degenerate (collinear) primaries; fall back to unit weights
		// rather than propagating a panic from a data-derived value.
		return unit
	}
	whiteXYZ := XyYToXYZ(XyY{white.X, white.Y, 1})
	s := minv.Mul(whiteXYZ)

	return ColorPrimaries{
		Red:   XyY{rx, ry, s[0]},
		Green: XyY{gx, gy, s[1]},
		Blue:  XyY{bx, by, s[2]},
	}
}

// XyYToXYZ converts a CIE xyY chromaticity to XYZ tristimulus values,
// per spec.md §4.5: X = x*Y/y, Y = Y, Z = (1-x-y)*Y/y.
func XyYToXYZ(c XyY) Vec3 {
	if c.Y == 0 {
		return Vec3{}
	}
	return Vec3{
		c.X * c.LumaY / c.Y,
		c.LumaY,
		(1 - c.X - c.Y) * c.LumaY / c.Y,
	}
}

// XYZToXyY converts XYZ tristimulus values to CIE xyY.
func XYZToXyY(v Vec3) XyY {
	sum := v[0] + v[1] + v[2]
	if sum == 0 {
		return XyY{}
	}
	return XyY{X: v[0] / sum, Y: v[1] / sum, LumaY: v[1]}
}

// RGBToXYZMatrix builds the 3x3 row-major matrix that converts linear
// RGB in the given primaries (without accounting for white-point
// differences) to XYZ, per spec.md §4.5: each primary's XYZ forms one
// row of the matrix.
func RGBToXYZMatrix(p ColorPrimaries) Mat3 {
	r := XyYToXYZ(p.Red)
	g := XyYToXYZ(p.Green)
	b := XyYToXYZ(p.Blue)
	return Mat3{r, g, b}
}

// Convert converts a linear RGB triple v from gamut src to gamut dst,
// applying a von-Kries-style diagonal chromatic adaptation in the
// source primaries' cone space, per spec.md §4.5.
func Convert(v Vec3, src, dst ColorGamut) (Vec3, error) {
	mSrc := RGBToXYZMatrix(src.Primaries)
	mDst := RGBToXYZMatrix(dst.Primaries)

	mSrcInv, err := mSrc.Inverse()
	if err != nil {
		return Vec3{}, err
	}
	mDstInv, err := mDst.Inverse()
	if err != nil {
		return Vec3{}, err
	}

	dstWhiteXYZ := XyYToXYZ(dst.White)
	s := mSrcInv.Mul(dstWhiteXYZ)

	xyz := mSrc.Mul(v)
	xyz = xyz.Scale(s)
	return mDstInv.Mul(xyz), nil
}
