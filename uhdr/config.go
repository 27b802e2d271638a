/*
NAME
  config.go

DESCRIPTION
  config.go defines the configuration for an Ultra HDR to AVIF
  conversion run, per spec.md §6.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uhdr wires the TIFF/MPF/ICC/gain-map/color-math/JPEG/AVIF
// components into the Ultra HDR JPEG to HDR10 AVIF conversion pipeline
// described in spec.md §4.9.
package uhdr

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/uhdr2avif/codec/avif"
)

// Default configuration values, per spec.md §6.
const (
	// DefaultMaxDisplayBoost is 800/80, the ratio of a common mobile
	// HDR peak brightness to SDR white, approximately 10.
	DefaultMaxDisplayBoost     = 800.0 / 80.0
	DefaultTargetSDRWhiteLevel = 80.0
)

// Config holds the parameters for one conversion run. A zero-value
// Config is invalid; use NewConfig or set every field explicitly.
type Config struct {
	// MaxDisplayBoost is the maximum HDR boost the target display
	// supports, a linear ratio (not log2), per spec.md §6.
	MaxDisplayBoost float32

	// TargetSDRWhiteLevel is the SDR white level in nits the decoded
	// SDR base image is assumed to represent, per spec.md §4.9.
	TargetSDRWhiteLevel float32

	// Encoder is the AVIF/AV1 encoding sink the orchestrator hands the
	// finished frame to, per spec.md §4.8.
	Encoder avif.Encoder

	// Logger receives diagnostic and warning output, per spec.md §7.
	Logger logging.Logger
}

// NewConfig returns a Config with every field at its spec.md §6
// default except Encoder, which the caller must supply.
func NewConfig(logger logging.Logger, encoder avif.Encoder) Config {
	return Config{
		MaxDisplayBoost:     DefaultMaxDisplayBoost,
		TargetSDRWhiteLevel: DefaultTargetSDRWhiteLevel,
		Encoder:             encoder,
		Logger:              logger,
	}
}
