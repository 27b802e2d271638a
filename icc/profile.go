/*
NAME
  profile.go

DESCRIPTION
  profile.go implements the profile methods icc.go's Read function
  drives: recovering the media white point (optionally re-expressed
  through a chromatic-adaptation matrix), the gamut primaries (from a
  Chromaticity tag if present, else from the rXYZ/gXYZ/bXYZ colorant
  tags), and the per-channel tone curves, per spec.md §4.3.

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
	"github.com/ausocean/uhdr2avif/colormath"
)

// whitePoint recovers the profile's media white point as a CIE xyY
// coordinate. If a chad tag is present, the wtpt XYZ is re-expressed
// through the inverse of the chad matrix before conversion to xyY, per
// spec.md §4.3's chromatic-adaptation convention; otherwise wtpt is
// used directly. ok is false, with a nil error, if the profile has no
// wtpt tag at all.
func (p *profile) whitePoint() (colormath.XyY, bool, error) {
	wtptTag, ok := p.tagBytes(tagWtpt)
	if !ok {
		return colormath.XyY{}, false, nil
	}
	wtptXYZ, err := readXYZ(wtptTag)
	if err != nil {
		return colormath.XyY{}, false, err
	}

	chadTag, ok := p.tagBytes(tagChad)
	if !ok {
		return colormath.XYZToXyY(wtptXYZ), true, nil
	}

	chad, err := readChadMatrix(chadTag)
	if err != nil {
		return colormath.XyY{}, false, err
	}
	chadInv, err := chad.Inverse()
	if err != nil {
		return colormath.XyY{}, false, err
	}
	adapted := chadInv.Mul(wtptXYZ)
	return colormath.XYZToXyY(adapted), true, nil
}

// primaries recovers the profile's gamut primaries. A Chromaticity tag,
// if present, takes priority and supplies bare (x,y) pairs that are
// weighted via PrimariesFromChromaticity against the profile's own
// white point; otherwise the individual rXYZ/gXYZ/bXYZ colorant tags --
// which already carry correct luminance weights -- are read directly.
func (p *profile) primaries() (colormath.ColorPrimaries, error) {
	if chrmTag, ok := p.tagBytes(tagChrm); ok {
		chans, err := readChromaticity(chrmTag)
		if err != nil {
			return colormath.ColorPrimaries{}, err
		}
		white, ok, err := p.whitePoint()
		if err != nil {
			return colormath.ColorPrimaries{}, err
		}
		if !ok {
			white = colormath.XyY{X: 0.3127, Y: 0.3290, LumaY: 1}
		}
		return colormath.PrimariesFromChromaticity(
			chans[0][0], chans[0][1],
			chans[1][0], chans[1][1],
			chans[2][0], chans[2][1],
			white,
		), nil
	}

	r, err := p.colorantXyY(tagRXYZ)
	if err != nil {
		return colormath.ColorPrimaries{}, err
	}
	g, err := p.colorantXyY(tagGXYZ)
	if err != nil {
		return colormath.ColorPrimaries{}, err
	}
	b, err := p.colorantXyY(tagBXYZ)
	if err != nil {
		return colormath.ColorPrimaries{}, err
	}
	return colormath.ColorPrimaries{Red: r, Green: g, Blue: b}, nil
}

func (p *profile) colorantXyY(sig string) (colormath.XyY, error) {
	tag, ok := p.tagBytes(sig)
	if !ok {
		return colormath.XyY{}, nil
	}
	xyz, err := readXYZ(tag)
	if err != nil {
		return colormath.XyY{}, err
	}
	return colormath.XYZToXyY(xyz), nil
}

// transferCharacteristics reads the rTRC/gTRC/bTRC tone curves. A
// missing tag leaves the corresponding channel nil (identity), per
// spec.md §4.3.
func (p *profile) transferCharacteristics() (TransferCharacteristics, error) {
	r, err := p.curve(tagRTRC)
	if err != nil {
		return TransferCharacteristics{}, err
	}
	g, err := p.curve(tagGTRC)
	if err != nil {
		return TransferCharacteristics{}, err
	}
	b, err := p.curve(tagBTRC)
	if err != nil {
		return TransferCharacteristics{}, err
	}
	return TransferCharacteristics{R: r, G: g, B: b}, nil
}

func (p *profile) curve(sig string) (ToneCurve, error) {
	tag, ok := p.tagBytes(sig)
	if !ok {
		return nil, nil
	}
	return decodeCurve(tag)
}
