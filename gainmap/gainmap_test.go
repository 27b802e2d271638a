/*
DESCRIPTION
  gainmap_test.go tests XMP gain-map metadata parsing, weight_factor,
  and the compositor's identity property, per spec.md §8.

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

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const xmpScenario3 = `<?xpacket begin="" id=""?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description rdf:about="" xmlns:hdrgm="http://ns.adobe.com/hdr-gain-map/1.0/"
      hdrgm:HDRCapacityMax="3.0" />
  </rdf:RDF>
</x:xmpmeta>`

func TestParseXMPScenario3Defaults(t *testing.T) {
	meta, err := ParseXMP([]byte(xmpScenario3))
	if err != nil {
		t.Fatalf("ParseXMP: %v", err)
	}
	want := defaultMetadata()
	want.HDRCapacityMax = 3.0
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("ParseXMP result mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXMPMissingHDRCapacityMaxIsError(t *testing.T) {
	data := []byte(`<rdf:Description xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" />`)
	if _, err := ParseXMP(data); err == nil {
		t.Fatal("ParseXMP: expected error for missing HDRCapacityMax, got nil")
	}
}

func TestParseXMPTripleAsSeq(t *testing.T) {
	data := []byte(`<rdf:Description xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" HDRCapacityMax="1">
		<GainMapMin>
			<rdf:Seq>
				<rdf:li>0.1</rdf:li>
				<rdf:li>0.2</rdf:li>
				<rdf:li>0.3</rdf:li>
			</rdf:Seq>
		</GainMapMin>
	</rdf:Description>`)
	meta, err := ParseXMP(data)
	if err != nil {
		t.Fatalf("ParseXMP: %v", err)
	}
	want := [3]float32{0.1, 0.2, 0.3}
	if meta.GainMapMin != want {
		t.Errorf("GainMapMin = %v, want %v", meta.GainMapMin, want)
	}
}

func TestWeightFactorScenario4(t *testing.T) {
	meta := defaultMetadata()
	meta.HDRCapacityMin = 0
	meta.HDRCapacityMax = 3
	got := meta.WeightFactor(float32(math.Log2(10.0)))
	want := float32(1.0)
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("WeightFactor = %v, want approx %v", got, want)
	}
}

func TestWeightFactorBoundsAndMonotonic(t *testing.T) {
	meta := defaultMetadata()
	meta.HDRCapacityMin = 1
	meta.HDRCapacityMax = 4

	if got := meta.WeightFactor(0); got != 0 {
		t.Errorf("WeightFactor(below min) = %v, want 0", got)
	}
	if got := meta.WeightFactor(10); got != 1 {
		t.Errorf("WeightFactor(above max) = %v, want 1", got)
	}

	prev := float32(-1)
	for x := float32(1); x <= 4; x += 0.25 {
		got := meta.WeightFactor(x)
		if got < prev {
			t.Errorf("WeightFactor not monotonic at %v: %v < %v", x, got, prev)
		}
		prev = got
	}
}

func TestWeightFactorInvertedWhenBaseIsHDR(t *testing.T) {
	meta := defaultMetadata()
	meta.HDRCapacityMin = 0
	meta.HDRCapacityMax = 4
	meta.BaseRenditionIsHDR = true

	if got := meta.WeightFactor(0); got != 1 {
		t.Errorf("WeightFactor(below min, inverted) = %v, want 1", got)
	}
	if got := meta.WeightFactor(4); got != 0 {
		t.Errorf("WeightFactor(at max, inverted) = %v, want 0", got)
	}
}

func TestCompositorIdentityWhenGainAndOffsetsZero(t *testing.T) {
	meta := GainMapMetadata{
		Gamma:          [3]float32{1, 1, 1},
		HDRCapacityMin: 0,
		HDRCapacityMax: 1,
	}
	c := NewCompositor(meta, 0.5)
	sdr := [3]float32{0.2, 0.5, 0.9}
	g := [3]float32{0.3, 0.7, 1.0}
	got := c.Compute(sdr, g)
	for i := range got {
		if math.Abs(float64(got[i]-sdr[i])) > 1e-6 {
			t.Errorf("Compute[%d] = %v, want %v (identity)", i, got[i], sdr[i])
		}
	}
}
