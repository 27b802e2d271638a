/*
DESCRIPTION
  uhdrjpeg_test.go tests marker-segment scanning and the bilinear
  texel-center addressing property of spec.md §8.

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
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func appSegment(marker byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(markerStart)
	buf.WriteByte(marker)
	length := uint16(len(payload) + 2)
	binary.Write(&buf, binary.BigEndian, length)
	buf.Write(payload)
	return buf.Bytes()
}

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y*w) % 256)})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestScanSegmentsFindsXMP(t *testing.T) {
	base := encodeTestJPEG(t, 4, 4)
	xmpPayload := append(append([]byte{}, xmpNamespace...), []byte("<x/>")...)
	app1 := appSegment(markerAPP1, xmpPayload)

	data := append(append([]byte{}, base[:2]...), append(app1, base[2:]...)...)

	segs, err := scanSegments(data)
	if err != nil {
		t.Fatalf("scanSegments: %v", err)
	}
	if string(segs.xmp) != "<x/>" {
		t.Errorf("xmp = %q, want %q", segs.xmp, "<x/>")
	}
}

func TestScanSegmentsFindsMPF(t *testing.T) {
	base := encodeTestJPEG(t, 4, 4)
	mpfPayload := append(append([]byte{}, mpfNamespace...), []byte("tiffbytes")...)
	app2 := appSegment(markerAPP2, mpfPayload)

	data := append(append([]byte{}, base[:2]...), append(app2, base[2:]...)...)

	segs, err := scanSegments(data)
	if err != nil {
		t.Fatalf("scanSegments: %v", err)
	}
	if string(segs.mpf) != "tiffbytes" {
		t.Errorf("mpf = %q, want %q", segs.mpf, "tiffbytes")
	}
}

func TestBilinearBaseTexelCenterBias(t *testing.T) {
	cases := []struct {
		x    float64
		n    int
		want int
	}{
		{2.3, 10, 1}, // frac 0.3 < 0.5 -> floor-1
		{2.7, 10, 2}, // frac 0.7 >= 0.5 -> floor
		{0.2, 10, 0}, // clamp to 0
		{9.9, 10, 9}, // frac 0.9 >= 0.5 -> floor, which is n-1
	}
	for _, c := range cases {
		got := bilinearBase(c.x, c.n)
		if got != c.want {
			t.Errorf("bilinearBase(%v, %v) = %v, want %v", c.x, c.n, got, c.want)
		}
	}
}

func TestSampleBilinearAtTexelCenterReproducesSample(t *testing.T) {
	data := encodeTestJPEG(t, 8, 8)
	u, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, h := u.Extent()
	x, y := 3, 4
	nu := (float64(x) + 0.5) / float64(w)
	nv := (float64(y) + 0.5) / float64(h)

	got, ok := u.SampleBilinear(nu, nv)
	if !ok {
		t.Fatal("SampleBilinear: ok = false")
	}
	want := u.FetchPixelLinear(x, y)
	for c := 0; c < 3; c++ {
		if abs32(got[c]-want[c]) > 0.05 {
			t.Errorf("SampleBilinear[%d] = %v, want approx %v", c, got[c], want[c])
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
