/*
NAME
  tiff.go

DESCRIPTION
  tiff.go implements a minimal TIFF reader sufficient for the MPF
  consumer in this repository: header, IFD chain, and typed field
  values. It intentionally does not implement the full TIFF
  specification (strips, tiles, compression, image decoding) -- only
  the structural pieces that an MPF payload embeds.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tiff provides a reader for the TIFF container structure used
// to carry Multi-Picture Format (MPF) records embedded in a JPEG APPn
// marker. It reads headers, IFD chains and typed field values from an
// in-memory, absolutely-addressable byte stream.
package tiff

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// Endianness identifies the byte order declared by a TIFF header.
type Endianness int

// The two TIFF byte orders.
const (
	LittleEndian Endianness = iota
	BigEndian
)

// ByteOrder returns the binary.ByteOrder matching e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Field types, per the TIFF 6.0 specification, §2.
type FieldType uint16

// Supported field types. Values match the TIFF specification's type
// tags so that a raw type read from a stream can be cast directly.
const (
	Byte      FieldType = 1
	ASCII     FieldType = 2
	Short     FieldType = 3
	Long      FieldType = 4
	Rational  FieldType = 5
	SByte     FieldType = 6
	Undefined FieldType = 7
	SShort    FieldType = 8
	SLong     FieldType = 9
	SRational FieldType = 10
	Float     FieldType = 11
	Double    FieldType = 12
)

// typeSize returns the byte size of a single value of type t, or 0 if t
// is not a type this reader supports.
func typeSize(t FieldType) int {
	switch t {
	case Byte, ASCII, SByte, Undefined:
		return 1
	case Short, SShort:
		return 2
	case Long, SLong, Float:
		return 4
	case Rational, SRational, Double:
		return 8
	default:
		return 0
	}
}

// Header is the 8-byte (classic) TIFF file header: byte order, version,
// and the offset of the first IFD.
type Header struct {
	Order        Endianness
	Version      uint16 // 42 for classic TIFF, 43 for BigTIFF.
	FirstIFDOff  uint32
	offsetFields int // 4 for classic, 8 for BigTIFF.
}

// classic and BigTIFF magic version numbers.
const (
	versionClassic = 42
	versionBigTIFF = 43
)

// magic byte-order markers.
const (
	magicLittleEndian = 0x4949
	magicBigEndian    = 0x4d4d
)

// Rational is a numerator/denominator pair as stored by RATIONAL and
// SRATIONAL fields.
type Rational struct {
	Num, Den int64
}

// Value is a typed field value vector read from an IFD entry. Exactly
// one of the slices is populated, matching Type.
type Value struct {
	Type  FieldType
	Count uint32

	Bytes      []byte
	ASCIIVal   string
	Shorts     []uint16
	Longs      []uint32
	SBytes     []int8
	SShorts    []int16
	SLongs     []int32
	Rationals  []Rational
	SRationals []Rational
	Floats     []float32
	Doubles    []float64
}

// Entry is a single IFD entry: a tag, its field type, the element
// count, and the decoded typed value.
type Entry struct {
	Tag   uint16
	Value Value
}

// IFD is an ordered list of entries read from one Image File Directory.
type IFD []Entry

// Find returns the entry with the given tag and true, or the zero Entry
// and false if no such tag is present.
func (d IFD) Find(tag uint16) (Entry, bool) {
	for _, e := range d {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// File is a fully parsed TIFF stream: its header and the chain of IFDs
// reachable from the first-IFD offset.
type File struct {
	Header Header
	IFDs   []IFD
}

// errContainerFormat wraps uhdrerr.ContainerFormat with a message.
func errContainerFormat(msg string) error {
	return errors.Wrap(uhdrerr.ContainerFormat, msg)
}
