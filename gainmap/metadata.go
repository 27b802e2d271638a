/*
NAME
  metadata.go

DESCRIPTION
  metadata.go parses the Ultra HDR XMP gain-map metadata packet carried
  on a gain-map sub-image's APP1 segment into a GainMapMetadata, per
  spec.md §4.4, and implements the weight_factor function used to scale
  recovered gain by the display's actual boost headroom.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gainmap parses Ultra HDR gain-map XMP metadata and implements
// the per-pixel gain-map compositing formula that recovers an HDR pixel
// from an SDR base pixel and a gain-map sample.
package gainmap

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/uhdr2avif/uhdrerr"
)

// GainMapMetadata is the Ultra HDR gain-map recovery metadata, per
// spec.md §3. Defaults match the XMP spec's documented fallbacks.
type GainMapMetadata struct {
	BaseRenditionIsHDR bool
	GainMapMin         [3]float32
	GainMapMax         [3]float32
	Gamma              [3]float32
	OffsetSDR          [3]float32
	OffsetHDR          [3]float32
	HDRCapacityMin     float32
	HDRCapacityMax     float32
}

// defaultMetadata returns a GainMapMetadata with every field at its
// spec.md §3 default. HDRCapacityMax is required and left at zero; a
// zero value there signals "not yet set" to the caller.
func defaultMetadata() GainMapMetadata {
	m := GainMapMetadata{HDRCapacityMin: 0}
	for i := 0; i < 3; i++ {
		m.Gamma[i] = 1
		m.OffsetSDR[i] = 0.015625
		m.OffsetHDR[i] = 0.015625
	}
	return m
}

// xmpNode is a generic XML element used to walk the XMP packet looking
// for an rdf:Description carrying the Ultra HDR fields, regardless of
// namespace prefix.
type xmpNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmpNode  `xml:",any"`
	CharData string     `xml:",chardata"`
}

func localName(n xml.Name) string { return n.Local }

// findDescription locates the first element whose local name is
// "Description", per spec.md §4.4.
func findDescription(n *xmpNode) *xmpNode {
	if localName(n.XMLName) == "Description" {
		return n
	}
	for i := range n.Children {
		if found := findDescription(&n.Children[i]); found != nil {
			return found
		}
	}
	return nil
}

// ParseXMP parses an Ultra HDR XMP packet into a GainMapMetadata, per
// spec.md §4.4. HDRCapacityMax is required; its absence is a Metadata
// error.
func ParseXMP(data []byte) (GainMapMetadata, error) {
	var root xmpNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return GainMapMetadata{}, errors.Wrap(uhdrerr.Metadata, "gainmap: invalid XMP packet: "+err.Error())
	}

	desc := findDescription(&root)
	if desc == nil {
		return GainMapMetadata{}, errors.Wrap(uhdrerr.Metadata, "gainmap: no Description element in XMP packet")
	}

	meta := defaultMetadata()

	if v, ok := fieldBool(desc, "BaseRenditionIsHDR"); ok {
		meta.BaseRenditionIsHDR = v
	}
	if v, ok := fieldTriple(desc, "GainMapMin"); ok {
		meta.GainMapMin = v
	}
	if v, ok := fieldTriple(desc, "GainMapMax"); ok {
		meta.GainMapMax = v
	}
	if v, ok := fieldTriple(desc, "Gamma"); ok {
		meta.Gamma = v
	}
	if v, ok := fieldTriple(desc, "OffsetSDR"); ok {
		meta.OffsetSDR = v
	}
	if v, ok := fieldTriple(desc, "OffsetHDR"); ok {
		meta.OffsetHDR = v
	}
	if v, ok := fieldScalar(desc, "HDRCapacityMin"); ok {
		meta.HDRCapacityMin = v
	}

	max, ok := fieldScalar(desc, "HDRCapacityMax")
	if !ok {
		return GainMapMetadata{}, errors.Wrap(uhdrerr.Metadata, "gainmap: HDRCapacityMax is required")
	}
	meta.HDRCapacityMax = max

	return meta, nil
}

// fieldText returns a field's raw text, whether present as an attribute
// on desc or as a single child element's character data.
func fieldText(desc *xmpNode, name string) (string, bool) {
	for _, a := range desc.Attrs {
		if localName(a.Name) == name {
			return strings.TrimSpace(a.Value), true
		}
	}
	for i := range desc.Children {
		if localName(desc.Children[i].XMLName) == name {
			return strings.TrimSpace(desc.Children[i].CharData), true
		}
	}
	return "", false
}

// fieldChild returns the child element named name, if any.
func fieldChild(desc *xmpNode, name string) *xmpNode {
	for i := range desc.Children {
		if localName(desc.Children[i].XMLName) == name {
			return &desc.Children[i]
		}
	}
	return nil
}

func fieldScalar(desc *xmpNode, name string) (float32, bool) {
	text, ok := fieldText(desc, name)
	if !ok || strings.TrimSpace(text) == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}

func fieldBool(desc *xmpNode, name string) (bool, bool) {
	text, ok := fieldText(desc, name)
	if !ok {
		return false, false
	}
	return strings.EqualFold(strings.TrimSpace(text), "true"), true
}

// fieldTriple resolves a field that may be a scalar (broadcast to all
// three channels) or a Seq/li triple of per-channel values, per
// spec.md §3's "scalar values in XMP broadcast to all three channels"
// invariant.
func fieldTriple(desc *xmpNode, name string) ([3]float32, bool) {
	var out [3]float32

	if v, ok := fieldScalar(desc, name); ok {
		return [3]float32{v, v, v}, true
	}

	child := fieldChild(desc, name)
	if child == nil {
		return out, false
	}
	seq := findSeq(child)
	if seq == nil {
		text := strings.TrimSpace(child.CharData)
		if text == "" {
			return out, false
		}
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return out, false
		}
		return [3]float32{float32(v), float32(v), float32(v)}, true
	}

	lis := liChildren(seq)
	if len(lis) < 3 {
		return out, false
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lis[i].CharData), 32)
		if err != nil {
			return out, false
		}
		out[i] = float32(v)
	}
	return out, true
}

func findSeq(n *xmpNode) *xmpNode {
	for i := range n.Children {
		if localName(n.Children[i].XMLName) == "Seq" {
			return &n.Children[i]
		}
	}
	return nil
}

func liChildren(n *xmpNode) []xmpNode {
	var out []xmpNode
	for i := range n.Children {
		if localName(n.Children[i].XMLName) == "li" {
			out = append(out, n.Children[i])
		}
	}
	return out
}

// WeightFactor computes the display-boost weighting factor described in
// spec.md §4.4: the proportion of the metadata's encoded HDR capacity
// range that the requested display boost covers, clamped to [0,1] and
// inverted when the base rendition is itself HDR.
func (m GainMapMetadata) WeightFactor(log2MaxDisplayBoost float32) float32 {
	var u float32
	if m.HDRCapacityMax != m.HDRCapacityMin {
		u = (log2MaxDisplayBoost - m.HDRCapacityMin) / (m.HDRCapacityMax - m.HDRCapacityMin)
	}
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	if m.BaseRenditionIsHDR {
		return 1 - u
	}
	return u
}
