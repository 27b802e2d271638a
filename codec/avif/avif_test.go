/*
DESCRIPTION
  avif_test.go tests the PQ inverse EOTF's boundary/monotonicity
  properties and Rec.2020-to-Y'CbCr frame conversion, per spec.md §8.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package avif

import (
	"math"
	"testing"
)

func TestPQInverseEOTFBoundsAndMonotonic(t *testing.T) {
	if got := PQInverseEOTF(0); got != 0 {
		t.Errorf("PQInverseEOTF(0) = %v, want 0", got)
	}
	if got := PQInverseEOTF(1); math.Abs(got-1.0) > 1e-4 {
		t.Errorf("PQInverseEOTF(1) = %v, want approx 1.0", got)
	}

	prev := -1.0
	for x := 0.0; x <= 1.0; x += 0.01 {
		got := PQInverseEOTF(x)
		if got < prev {
			t.Errorf("PQInverseEOTF not monotonic at x=%v: %v < %v", x, got, prev)
		}
		prev = got
	}
}

func TestFromLinearRec2020RejectsMismatchedLength(t *testing.T) {
	_, err := FromLinearRec2020(2, 2, make([]float32, 3))
	if err == nil {
		t.Fatal("FromLinearRec2020: expected error for mismatched buffer length")
	}
}

func TestFromLinearRec2020BlackAndWhite(t *testing.T) {
	// A single black pixel should quantize to Y'=0 (PQ(0)=0), Cb=Cr=512
	// (the 0.5 neutral chroma code).
	black := []float32{0, 0, 0}
	f, err := FromLinearRec2020(1, 1, black)
	if err != nil {
		t.Fatalf("FromLinearRec2020: %v", err)
	}
	if f.Y[0] != 0 {
		t.Errorf("Y[0] = %v, want 0", f.Y[0])
	}
	wantNeutral := uint16(512)
	if f.Cb[0] != wantNeutral || f.Cr[0] != wantNeutral {
		t.Errorf("Cb,Cr = %v,%v, want %v,%v", f.Cb[0], f.Cr[0], wantNeutral, wantNeutral)
	}
	if f.Space != Rec2100ColorSpace {
		t.Errorf("Space = %+v, want %+v", f.Space, Rec2100ColorSpace)
	}
}

func TestFromLinearRec2020MaxNitsClamps(t *testing.T) {
	white := []float32{20000, 20000, 20000} // above the 10000-nit PQ ceiling.
	f, err := FromLinearRec2020(1, 1, white)
	if err != nil {
		t.Fatalf("FromLinearRec2020: %v", err)
	}
	if f.Y[0] != bitDepthMax {
		t.Errorf("Y[0] = %v, want %v (clamped to full scale)", f.Y[0], bitDepthMax)
	}
}
