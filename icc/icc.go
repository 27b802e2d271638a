/*
NAME
  icc.go

DESCRIPTION
  icc.go derives a ColorGamut and TransferCharacteristics from an ICC
  profile, per spec.md §4.3: primaries from a Chromaticity tag or from
  the individual rXYZ/gXYZ/bXYZ colorant tags, white point from wtpt
  (optionally re-derived through a chad matrix), and per-channel tone
  curves from rTRC/gTRC/bTRC.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package icc reads the subset of an ICC.1 color profile needed to
// recover a source image's color gamut and tone curves: the media
// white point, optional chromatic adaptation matrix, RGB colorant or
// chromaticity primaries, and per-channel TRC tone curves.
package icc

import (
	"github.com/ausocean/uhdr2avif/colormath"
)

// IccColorSpace is the color space derived from an ICC profile, per
// spec.md §3.
type IccColorSpace struct {
	Description string
	Copyright   string
	Gamut       colormath.ColorGamut
	Transfer    TransferCharacteristics
}

// TransferCharacteristics holds an optional per-channel tone curve. A
// nil entry means the corresponding channel has no TRC tag and should
// be treated as identity, per spec.md §4.3.
type TransferCharacteristics struct {
	R, G, B ToneCurve
}

// Eval evaluates the curve for channel c (0=R,1=G,2=B) at x, or returns
// x unchanged if that channel has no curve.
func (t TransferCharacteristics) Eval(c int, x float64) float64 {
	var curve ToneCurve
	switch c {
	case 0:
		curve = t.R
	case 1:
		curve = t.G
	case 2:
		curve = t.B
	}
	if curve == nil {
		return x
	}
	return curve.Eval(x)
}

// Read derives an IccColorSpace from a raw ICC profile, per spec.md
// §4.3. It returns (nil, nil) -- not an error -- if the profile lacks a
// media white point tag, matching the spec's "returns Some iff..."
// contract: absence of the required tag is not itself a hard failure,
// callers fall back to a default gamut (spec.md §4.9).
func Read(data []byte) (*IccColorSpace, error) {
	p, err := newProfile(data)
	if err != nil {
		return nil, err
	}

	white, ok, err := p.whitePoint()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	primaries, err := p.primaries()
	if err != nil {
		return nil, err
	}

	transfer, err := p.transferCharacteristics()
	if err != nil {
		return nil, err
	}

	return &IccColorSpace{
		Description: p.mluText(tagDesc),
		Copyright:   p.mluText(tagCprt),
		Gamut: colormath.ColorGamut{
			Primaries: primaries,
			White:     white,
		},
		Transfer: transfer,
	}, nil
}
