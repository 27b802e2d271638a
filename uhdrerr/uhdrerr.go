/*
NAME
  uhdrerr.go

DESCRIPTION
  uhdrerr defines the error taxonomy shared by every stage of the Ultra
  HDR to AVIF pipeline: IO, ContainerFormat, Metadata, Math and
  EncoderFailure. Each layer wraps one of these sentinels with
  github.com/pkg/errors so that callers can classify a failure with
  errors.Is while still getting a human-readable chain of context.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uhdrerr provides the shared error taxonomy for the Ultra HDR
// to AVIF conversion pipeline.
package uhdrerr

import "errors"

// Sentinel errors identifying the taxonomy classes from spec.md §7.
// Wrap one of these with github.com/pkg/errors at the point of failure
// so that the class survives up to the orchestrator.
var (
	// IO indicates a read/write failure against the underlying byte
	// source or sink.
	IO = errors.New("uhdr: io error")

	// ContainerFormat indicates a TIFF/MPF/JPEG shape violation.
	ContainerFormat = errors.New("uhdr: container format error")

	// Metadata indicates a missing required XMP or ICC field.
	Metadata = errors.New("uhdr: metadata error")

	// Math indicates a singular chromatic-adaptation or RGB-to-XYZ
	// matrix.
	Math = errors.New("uhdr: math error")

	// EncoderFailure indicates the AVIF encoder sink rejected or failed
	// to produce output for a frame.
	EncoderFailure = errors.New("uhdr: encoder failure")
)
