/*
NAME
  compositor.go

DESCRIPTION
  compositor.go implements the per-pixel gain-map compositing formula
  of spec.md §4.7: recovering a boosted linear pixel from a linear SDR
  base pixel and a gain-map sample, given precomputed inverse gammas and
  a display-boost weight factor.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package gainmap

import "math"

// Compositor precomputes the per-channel quantities spec.md §4.7 needs
// from a GainMapMetadata and the requested display boost, so that the
// hot per-pixel loop does no repeated log/pow work beyond what the
// formula itself requires.
type Compositor struct {
	meta         GainMapMetadata
	invGamma     [3]float32
	weightFactor float32
}

// NewCompositor builds a Compositor for meta at the given
// log2(max_display_boost), per spec.md §4.7.
func NewCompositor(meta GainMapMetadata, log2MaxDisplayBoost float32) *Compositor {
	c := &Compositor{meta: meta, weightFactor: meta.WeightFactor(log2MaxDisplayBoost)}
	for i := 0; i < 3; i++ {
		if meta.Gamma[i] == 0 {
			c.invGamma[i] = 1
			continue
		}
		c.invGamma[i] = 1 / meta.Gamma[i]
	}
	return c
}

// Compute recovers the boosted linear pixel for a linear SDR sample sdr
// and a gain-map sample g (each component in [0,1] for g), per
// spec.md §4.7:
//
//	log_recovery = g ^ inv_gamma
//	log_boost    = gain_map_min*(1-log_recovery) + gain_map_max*log_recovery
//	boost        = exp2(log_boost * weight_factor)
//	boosted      = (sdr + offset_sdr) * boost - offset_hdr
func (c *Compositor) Compute(sdr, g [3]float32) [3]float32 {
	var out [3]float32
	for i := 0; i < 3; i++ {
		logRecovery := pow32(g[i], c.invGamma[i])
		logBoost := c.meta.GainMapMin[i]*(1-logRecovery) + c.meta.GainMapMax[i]*logRecovery
		boost := exp2f32(logBoost * c.weightFactor)
		out[i] = (sdr[i]+c.meta.OffsetSDR[i])*boost - c.meta.OffsetHDR[i]
	}
	return out
}

func pow32(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

func exp2f32(x float32) float32 {
	return float32(math.Exp2(float64(x)))
}
