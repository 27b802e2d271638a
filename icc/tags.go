/*
NAME
  tags.go

DESCRIPTION
  tags.go walks an ICC profile's tag table (header at offset 0, tag
  count at offset 128, tag table entries from offset 132, per the
  ICC.1 specification) and decodes the handful of tag types this
  package needs: XYZType, chromaticityType, a non-standard "chad as
  xyY-triple" layout per spec.md §4.3/§9, curveType/parametricCurveType,
  and multiLocalizedUnicodeType.

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
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/colormath"
	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// ICC tag signatures this package reads.
const (
	tagWtpt = "wtpt"
	tagChad = "chad"
	tagChrm = "chrm"
	tagRXYZ = "rXYZ"
	tagGXYZ = "gXYZ"
	tagBXYZ = "bXYZ"
	tagRTRC = "rTRC"
	tagGTRC = "gTRC"
	tagBTRC = "bTRC"
	tagDesc = "desc"
	tagCprt = "cprt"
)

const (
	tagTableOffset  = 128 // offset of the 4-byte tag count.
	tagTableEntries = 132 // offset of the first 12-byte tag table entry.
	tagEntrySize    = 12
)

type tagEntry struct {
	offset, size uint32
}

// profile is a parsed ICC profile's tag table, ready for per-tag
// decoding on demand.
type profile struct {
	data []byte
	tags map[string]tagEntry
}

func newProfile(data []byte) (*profile, error) {
	if len(data) < tagTableOffset+4 {
		return nil, errors.Wrap(uhdrerr.Metadata, "icc: profile too short for tag table header")
	}
	count := binary.BigEndian.Uint32(data[tagTableOffset : tagTableOffset+4])

	p := &profile{data: data, tags: make(map[string]tagEntry, count)}
	pos := tagTableEntries
	for i := uint32(0); i < count; i++ {
		if pos+tagEntrySize > len(data) {
			return nil, errors.Wrap(uhdrerr.Metadata, "icc: tag table entry out of range")
		}
		sig := string(data[pos : pos+4])
		off := binary.BigEndian.Uint32(data[pos+4 : pos+8])
		sz := binary.BigEndian.Uint32(data[pos+8 : pos+12])
		p.tags[sig] = tagEntry{offset: off, size: sz}
		pos += tagEntrySize
	}
	return p, nil
}

// tagBytes returns the raw tag data for sig, or nil, false if absent.
func (p *profile) tagBytes(sig string) ([]byte, bool) {
	e, ok := p.tags[sig]
	if !ok {
		return nil, false
	}
	if int(e.offset)+int(e.size) > len(p.data) {
		return nil, false
	}
	return p.data[e.offset : e.offset+e.size], true
}

// s15Fixed16 decodes a signed 16.16 fixed-point number at b[0:4],
// big-endian, the ICC "s15Fixed16Number" encoding.
func s15Fixed16(b []byte) float64 {
	v := int32(binary.BigEndian.Uint32(b))
	return float64(v) / 65536.0
}

// readXYZ decodes one XYZType tag's single XYZNumber (after the 8-byte
// type/reserved header) into a colormath.Vec3.
func readXYZ(tag []byte) (colormath.Vec3, error) {
	if len(tag) < 8+12 {
		return colormath.Vec3{}, errors.Wrap(uhdrerr.Metadata, "icc: XYZType tag too short")
	}
	body := tag[8:]
	return colormath.Vec3{
		s15Fixed16(body[0:4]),
		s15Fixed16(body[4:8]),
		s15Fixed16(body[8:12]),
	}, nil
}

// readChromaticity decodes a chromaticityType tag's device-channel xy
// pairs (u16Fixed16Number, big-endian) into bare (x,y) coordinates for
// up to 3 channels (R, G, B).
func readChromaticity(tag []byte) ([3][2]float64, error) {
	var out [3][2]float64
	if len(tag) < 12 {
		return out, errors.Wrap(uhdrerr.Metadata, "icc: chromaticityType tag too short")
	}
	nChannels := binary.BigEndian.Uint16(tag[8:10])
	if nChannels < 3 {
		return out, errors.Wrap(uhdrerr.Metadata, "icc: chromaticityType has fewer than 3 channels")
	}
	pos := 12
	for c := 0; c < 3; c++ {
		if pos+8 > len(tag) {
			return out, errors.Wrap(uhdrerr.Metadata, "icc: chromaticityType truncated")
		}
		out[c][0] = u16Fixed16(tag[pos : pos+4])
		out[c][1] = u16Fixed16(tag[pos+4 : pos+8])
		pos += 8
	}
	return out, nil
}

// u16Fixed16 decodes an unsigned 16.16 fixed-point number, big-endian.
func u16Fixed16(b []byte) float64 {
	v := binary.BigEndian.Uint32(b)
	return float64(v) / 65536.0
}

// readChadMatrix decodes the chad tag per spec.md §4.3/§9: not the
// standard ICC sf32 layout, but three xyY triples (3 x s15Fixed16Number
// each) following the 8-byte type header, read as the three *columns*
// of a 3x3 matrix: M[i][j] = column[j].component[i].
func readChadMatrix(tag []byte) (colormath.Mat3, error) {
	if len(tag) < 8+36 {
		return colormath.Mat3{}, errors.Wrap(uhdrerr.Metadata, "icc: chad tag too short")
	}
	body := tag[8:]
	var cols [3][3]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			cols[j][i] = s15Fixed16(body[(j*3+i)*4 : (j*3+i)*4+4])
		}
	}
	var m colormath.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = cols[j][i]
		}
	}
	return m, nil
}

// mluText returns the first available locale's text for an MLU
// (multiLocalizedUnicodeType) tag with the given signature, or "" if
// the tag is absent or malformed.
func (p *profile) mluText(sig string) string {
	tag, ok := p.tagBytes(sig)
	if !ok || len(tag) < 16 {
		return ""
	}
	nRecords := binary.BigEndian.Uint32(tag[8:12])
	recordSize := binary.BigEndian.Uint32(tag[12:16])
	if nRecords == 0 || recordSize < 12 {
		return ""
	}
	recOff := 16
	if recOff+12 > len(tag) {
		return ""
	}
	length := binary.BigEndian.Uint32(tag[recOff+4 : recOff+8])
	offset := binary.BigEndian.Uint32(tag[recOff+8 : recOff+12])
	start := int(offset)
	end := start + int(length)
	if start < 0 || end > len(tag) || end < start {
		return ""
	}
	return decodeUTF16BE(tag[start:end])
}

func decodeUTF16BE(b []byte) string {
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = binary.BigEndian.Uint16(b[2*i : 2*i+2])
	}
	return string(utf16.Decode(units))
}
