/*
NAME
  segments.go

DESCRIPTION
  segments.go scans a JPEG byte stream's marker segments up to Start Of
  Scan, locating the APP1 XMP packet and the APP2 ICC profile / MPF
  payload segments a gain-map pipeline needs.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package uhdrjpeg

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

const (
	markerStart = 0xFF
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP1  = 0xE1
	markerAPP2  = 0xE2
)

var (
	xmpNamespace = []byte("http://ns.adobe.com/xap/1.0/\x00")
	iccNamespace = []byte("ICC_PROFILE\x00")
	mpfNamespace = []byte("MPF\x00")
)

type segments struct {
	xmp, icc, mpf []byte
}

// hasMarkerlessPayload reports whether a marker byte is one of the
// no-length markers: SOI/EOI/TEM and RSTn.
func hasMarkerlessPayload(m byte) bool {
	if m == markerSOI || m == markerEOI || m == 0x01 {
		return true
	}
	return m >= 0xD0 && m <= 0xD7
}

// scanSegments walks data's marker chain up to (not including) Start Of
// Scan, per spec.md §4.6, collecting the first APP1 XMP segment and the
// first APP2 ICC/MPF segments found. Returned slices are borrowed views
// into data.
func scanSegments(data []byte) (segments, error) {
	var segs segments

	pos := 0
	for pos+1 < len(data) {
		if data[pos] != markerStart {
			pos++
			continue
		}
		marker := data[pos+1]
		if marker == markerStart {
			pos++
			continue
		}
		if marker == markerSOS {
			break
		}
		if hasMarkerlessPayload(marker) {
			pos += 2
			continue
		}
		if pos+4 > len(data) {
			return segments{}, errors.Wrap(uhdrerr.ContainerFormat, "uhdrjpeg: truncated marker segment")
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return segments{}, errors.Wrap(uhdrerr.ContainerFormat, "uhdrjpeg: invalid marker segment length")
		}
		payload := data[pos+4 : pos+2+length]

		switch marker {
		case markerAPP1:
			if segs.xmp == nil && bytes.HasPrefix(payload, xmpNamespace) {
				segs.xmp = payload[len(xmpNamespace):]
			}
		case markerAPP2:
			switch {
			case segs.icc == nil && bytes.HasPrefix(payload, iccNamespace):
				segs.icc = payload[len(iccNamespace)+2:] // skip chunk-seq/chunk-count bytes.
			case segs.mpf == nil && bytes.HasPrefix(payload, mpfNamespace):
				segs.mpf = payload[len(mpfNamespace):]
			}
		}

		pos += 2 + length
	}

	return segs, nil
}
