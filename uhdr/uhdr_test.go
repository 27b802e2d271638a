/*
DESCRIPTION
  uhdr_test.go builds a minimal synthetic Ultra HDR JPEG fixture (SOI +
  MPF APP2 + primary JPEG, followed by a second SOI + XMP APP1 +
  gain-map JPEG) and exercises the full Convert pipeline end to end,
  per spec.md §8 scenario 6's shape (without requiring a real AV1
  encoder, since none exists in this module -- a stub Encoder captures
  the finished Frame for inspection instead).

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
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/ausocean/uhdr2avif/codec/avif"
)

type stubEncoder struct {
	frame *avif.Frame
}

func (s *stubEncoder) EncodeFrame(w io.Writer, f *avif.Frame, quality, speed int) error {
	s.frame = f
	_, err := w.Write([]byte("avif-stub"))
	return err
}

func encodeGray(t *testing.T, w, h int, fill func(x, y int) uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

// buildMPFSegment assembles a little-endian MPF TIFF payload for two
// entries and wraps it as an APP2 segment, with entry 0's ImageSize
// patched in after the segment's total length is known.
func buildMPFSegment(t *testing.T, primaryImageSize, secondaryImageSize uint32) []byte {
	t.Helper()
	bo := binary.LittleEndian

	const headerLen = 8
	const numEntries = 3
	countLen := 2
	entriesLen := numEntries * 12
	nextLen := 4
	dataOff := headerLen + countLen + entriesLen + nextLen
	entryBytes := make([]byte, 32) // 2 MP entries, 16 bytes each.
	bo.PutUint32(entryBytes[4:8], primaryImageSize)
	bo.PutUint32(entryBytes[16+4:16+8], secondaryImageSize)
	bo.PutUint32(entryBytes[16+8:16+12], primaryImageSize)

	tiff := make([]byte, dataOff+len(entryBytes))
	bo.PutUint16(tiff[0:2], 0x4949)
	bo.PutUint16(tiff[2:4], 42)
	bo.PutUint32(tiff[4:8], headerLen)
	bo.PutUint16(tiff[8:10], numEntries)

	pos := 10
	bo.PutUint16(tiff[pos:pos+2], 0xB000)
	bo.PutUint16(tiff[pos+2:pos+4], 7)
	bo.PutUint32(tiff[pos+4:pos+8], 4)
	copy(tiff[pos+8:pos+12], []byte("0100"))
	pos += 12

	bo.PutUint16(tiff[pos:pos+2], 0xB001)
	bo.PutUint16(tiff[pos+2:pos+4], 4)
	bo.PutUint32(tiff[pos+4:pos+8], 1)
	bo.PutUint32(tiff[pos+8:pos+12], 2)
	pos += 12

	bo.PutUint16(tiff[pos:pos+2], 0xB002)
	bo.PutUint16(tiff[pos+2:pos+4], 7)
	bo.PutUint32(tiff[pos+4:pos+8], uint32(len(entryBytes)))
	bo.PutUint32(tiff[pos+8:pos+12], uint32(dataOff))
	pos += 12

	bo.PutUint32(tiff[pos:pos+4], 0)
	copy(tiff[dataOff:], entryBytes)

	payload := append([]byte("MPF\x00"), tiff...)
	var seg bytes.Buffer
	seg.WriteByte(0xFF)
	seg.WriteByte(0xE2)
	binary.Write(&seg, binary.BigEndian, uint16(len(payload)+2))
	seg.Write(payload)
	return seg.Bytes()
}

func buildXMPSegment(xml string) []byte {
	payload := append([]byte("http://ns.adobe.com/xap/1.0/\x00"), []byte(xml)...)
	var seg bytes.Buffer
	seg.WriteByte(0xFF)
	seg.WriteByte(0xE1)
	binary.Write(&seg, binary.BigEndian, uint16(len(payload)+2))
	seg.Write(payload)
	return seg.Bytes()
}

const testXMP = `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description xmlns:hdrgm="http://ns.adobe.com/hdr-gain-map/1.0/" hdrgm:HDRCapacityMax="3.0" hdrgm:GainMapMax="2.0" /></rdf:RDF></x:xmpmeta>`

func buildUltraHDRFixture(t *testing.T) []byte {
	t.Helper()
	primary := encodeGray(t, 4, 4, func(x, y int) uint8 { return 100 })
	gainmap := encodeGray(t, 4, 4, func(x, y int) uint8 { return 128 })
	xmpSeg := buildXMPSegment(testXMP)

	// Probe the MPF segment length with a zero primary size, then
	// recompute once the primary container's true length is known.
	probe := buildMPFSegment(t, 0, uint32(len(gainmap)))
	primaryImageSize := uint32(2 + len(probe) + len(primary) - 2)
	mpfSeg := buildMPFSegment(t, primaryImageSize, uint32(len(gainmap)))
	if len(mpfSeg) != len(probe) {
		t.Fatalf("MPF segment length not stable across patch: %d != %d", len(mpfSeg), len(probe))
	}

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8}) // SOI
	out.Write(mpfSeg)
	out.Write(primary[2:])

	out.Write([]byte{0xFF, 0xD8}) // SOI
	out.Write(xmpSeg)
	out.Write(gainmap[2:])
	// GainMapRange excludes the file's final byte, per spec.md §4.2/§9;
	// a trailing pad byte keeps the gain-map JPEG's own EOI intact once
	// that final byte is dropped.
	out.WriteByte(0x00)

	return out.Bytes()
}

func TestConvertEndToEnd(t *testing.T) {
	data := buildUltraHDRFixture(t)

	enc := &stubEncoder{}
	cfg := NewConfig(nil, enc)

	var out bytes.Buffer
	if err := Convert(&out, data, cfg); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if out.String() != "avif-stub" {
		t.Errorf("output = %q, want %q", out.String(), "avif-stub")
	}
	if enc.frame == nil {
		t.Fatal("Encoder.EncodeFrame was never called")
	}
	if enc.frame.Width != 4 || enc.frame.Height != 4 {
		t.Errorf("frame dims = %dx%d, want 4x4", enc.frame.Width, enc.frame.Height)
	}
	if enc.frame.Space != avif.Rec2100ColorSpace {
		t.Errorf("frame.Space = %+v, want %+v", enc.frame.Space, avif.Rec2100ColorSpace)
	}
	for i, y := range enc.frame.Y {
		if y > 1023 {
			t.Fatalf("Y[%d] = %d out of 10-bit range", i, y)
		}
	}
}

func TestConvertFailsWithoutGainMap(t *testing.T) {
	primary := encodeGray(t, 2, 2, func(x, y int) uint8 { return 50 })
	enc := &stubEncoder{}
	cfg := NewConfig(nil, enc)
	var out bytes.Buffer
	if err := Convert(&out, primary, cfg); err == nil {
		t.Fatal("Convert: expected error for non-Ultra-HDR input, got nil")
	}
}
