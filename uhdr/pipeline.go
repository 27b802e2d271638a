/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements the Ultra HDR JPEG to HDR10 AVIF conversion
  pipeline of spec.md §4.9: parse the primary and gain-map sub-images,
  read the gain-map metadata, composite a boosted linear pixel per
  sample, convert from the source gamut to Rec.2020, and hand the
  result to the AVIF sink.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package uhdr

import (
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/codec/avif"
	"github.com/ausocean/uhdr2avif/codec/uhdrjpeg"
	"github.com/ausocean/uhdr2avif/colormath"
	"github.com/ausocean/uhdr2avif/gainmap"
	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// defaultGamut is used when the primary image has no usable ICC
// profile, per spec.md §4.9 and §7's "missing optional metadata is
// recovered locally with defaults (sRGB gamut...)" policy.
var defaultGamut = colormath.GamutSRGB

// Convert reads an Ultra HDR JPEG from data and writes the resulting
// HDR10 AVIF bitstream to dst, per spec.md §4.9. cfg.Logger, if
// non-nil, receives a warning when the primary image has no usable ICC
// profile and the sRGB gamut is used instead; the fallbacks for a
// non-positive MaxDisplayBoost or TargetSDRWhiteLevel are not logged.
// Any other failure aborts the run and is returned, per spec.md §7.
func Convert(dst io.Writer, data []byte, cfg Config) error {
	primary, err := uhdrjpeg.Parse(data)
	if err != nil {
		return err
	}

	gainMapImg, ok, err := primary.ExtractGainMap(data)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(uhdrerr.ContainerFormat, "uhdr: input has fewer than 2 MPF entries, not an Ultra HDR JPEG")
	}

	xmpBytes := gainMapImg.XmpBytes()
	if xmpBytes == nil {
		return errors.Wrap(uhdrerr.Metadata, "uhdr: gain-map sub-image has no XMP packet")
	}
	meta, err := gainmap.ParseXMP(xmpBytes)
	if err != nil {
		return err
	}

	srcGamut := defaultGamut
	if space := primary.IccColorSpace(); space != nil {
		srcGamut = space.Gamut
	} else if cfg.Logger != nil {
		cfg.Logger.Warning("uhdr: primary image has no usable ICC profile, defaulting to sRGB gamut")
	}

	maxBoost := cfg.MaxDisplayBoost
	if maxBoost <= 0 {
		maxBoost = DefaultMaxDisplayBoost
	}
	log2MaxDisplayBoost := float32(math.Log2(float64(maxBoost)))
	compositor := gainmap.NewCompositor(meta, log2MaxDisplayBoost)

	whiteLevel := cfg.TargetSDRWhiteLevel
	if whiteLevel <= 0 {
		whiteLevel = DefaultTargetSDRWhiteLevel
	}

	w, h := primary.Extent()
	rgbNits := make([]float32, w*h*3)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inRGB := primary.FetchPixelLinear(x, y)

			u := (float64(x) + 0.5) / float64(w)
			v := (float64(y) + 0.5) / float64(h)
			g, _ := gainMapImg.SampleBilinear(u, v)

			boosted := compositor.Compute(inRGB, g)

			scaled := colormath.Vec3{
				float64(boosted[0]) * float64(whiteLevel),
				float64(boosted[1]) * float64(whiteLevel),
				float64(boosted[2]) * float64(whiteLevel),
			}

			rec2020, err := colormath.Convert(scaled, srcGamut, colormath.GamutRec2020)
			if err != nil {
				return err
			}

			idx := (y*w + x) * 3
			rgbNits[idx+0] = float32(rec2020[0])
			rgbNits[idx+1] = float32(rec2020[1])
			rgbNits[idx+2] = float32(rec2020[2])
		}
	}

	frame, err := avif.FromLinearRec2020(w, h, rgbNits)
	if err != nil {
		return err
	}

	if cfg.Encoder == nil {
		return errors.Wrap(uhdrerr.EncoderFailure, "uhdr: no Encoder configured")
	}
	if err := cfg.Encoder.EncodeFrame(dst, frame, avif.DefaultQuality, avif.DefaultSpeed); err != nil {
		return errors.Wrap(uhdrerr.EncoderFailure, "uhdr: "+err.Error())
	}
	return nil
}
