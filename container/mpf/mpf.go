/*
NAME
  mpf.go

DESCRIPTION
  mpf.go decodes the Multi-Picture Format (CIPA DC-007) APPn payload
  embedded in an Ultra HDR JPEG into an ordered list of MpEntry records,
  per spec.md §4.2. The payload is itself a TIFF stream; this package
  walks its first IFD using the tiff package and extracts the
  fixed-layout 16-byte MP entry records from tag 0xB002.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mpf parses the TIFF-structured Multi-Picture Format APPn
// payload that locates the gain-map sub-image within an Ultra HDR JPEG.
package mpf

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/tiff"
	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// MPF IFD tags, per CIPA DC-007.
const (
	tagVersion    = 0xB000
	tagNumImages  = 0xB001
	tagMPEntry    = 0xB002
	mpEntrySize   = 16
	versionString = "0100"
)

// MpEntry is one record of the MP Entry array: §3 of spec.md.
type MpEntry struct {
	ImageAttribute  [4]byte
	ImageSize       uint32
	ImageDataOffset uint32
	Dependent1Index uint16
	Dependent2Index uint16
}

// Parse decodes an MPF APPn payload (the bytes following the "MPF\0"
// identifier) into its ordered MpEntry list. The first entry is the
// primary image; subsequent entries are auxiliary images (for Ultra
// HDR, the gain map).
func Parse(payload []byte) ([]MpEntry, error) {
	f, err := tiff.Read(payload)
	if err != nil {
		return nil, errors.Wrap(err, "mpf: parsing MPF payload as TIFF")
	}
	if len(f.IFDs) == 0 {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "mpf: no IFD in MPF payload")
	}
	ifd := f.IFDs[0]
	bo := f.Header.Order.ByteOrder()

	verEntry, ok := ifd.Find(tagVersion)
	if !ok {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "mpf: missing version tag 0xB000")
	}
	if string(verEntry.Value.Bytes) != versionString {
		return nil, errors.Wrapf(uhdrerr.ContainerFormat, "mpf: unexpected version %q", verEntry.Value.Bytes)
	}

	numEntry, ok := ifd.Find(tagNumImages)
	if !ok {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "mpf: missing number-of-images tag 0xB001")
	}
	if len(numEntry.Value.Longs) != 1 {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "mpf: number-of-images tag has unexpected value count")
	}
	n := numEntry.Value.Longs[0]

	listEntry, ok := ifd.Find(tagMPEntry)
	if !ok {
		return nil, errors.Wrap(uhdrerr.ContainerFormat, "mpf: missing MP entry list tag 0xB002")
	}
	want := int(n) * mpEntrySize
	if len(listEntry.Value.Bytes) != want {
		return nil, errors.Wrapf(uhdrerr.ContainerFormat,
			"mpf: MP entry list has %d bytes, want %d (16*%d)", len(listEntry.Value.Bytes), want, n)
	}

	entries := make([]MpEntry, n)
	raw := listEntry.Value.Bytes
	for i := uint32(0); i < n; i++ {
		rec := raw[i*mpEntrySize : (i+1)*mpEntrySize]
		var e MpEntry
		copy(e.ImageAttribute[:], rec[0:4])
		e.ImageSize = bo.Uint32(rec[4:8])
		e.ImageDataOffset = bo.Uint32(rec[8:12])
		e.Dependent1Index = bo.Uint16(rec[12:14])
		e.Dependent2Index = bo.Uint16(rec[14:16])
		entries[i] = e
	}
	return entries, nil
}

// GainMapRange returns the byte range [start, end) of the gain-map
// sub-JPEG within the original file, given the parsed MP entries and
// the total length of the original file. Per spec.md §4.2 and §9, the
// range spans from the end of the primary image to one byte before the
// end of the file; whether this intentionally excludes the final EOI
// byte is unclear upstream, so it is implemented as-is.
func GainMapRange(entries []MpEntry, fileLen int) (start, end int, err error) {
	if len(entries) < 2 {
		return 0, 0, errors.Wrap(uhdrerr.ContainerFormat, "mpf: fewer than 2 entries, no gain map present")
	}
	start = int(entries[0].ImageSize)
	end = fileLen - 1
	if start < 0 || start >= end {
		return 0, 0, errors.Wrap(uhdrerr.ContainerFormat, fmt.Sprintf("mpf: invalid gain-map range [%d,%d)", start, end))
	}
	return start, end, nil
}
