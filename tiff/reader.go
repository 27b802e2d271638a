/*
NAME
  reader.go

DESCRIPTION
  reader.go implements the TIFF header and IFD-chain walk described in
  spec.md §4.1: read the magic/version/first-IFD-offset header, then
  follow the singly linked IFD chain, resolving each entry's typed value
  either inline in the 4/8-byte value field or at an absolute offset.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tiff

import (
	"encoding/binary"
	"fmt"
)

// ifdEntrySize is the on-disk size of one classic-TIFF IFD entry:
// tag(2) + type(2) + count(4) + value/offset(4).
const ifdEntrySize = 12

// Read parses a complete TIFF byte stream addressable by absolute
// offsets (spec.md §4.1). buf must contain the entire TIFF stream
// starting at its header.
func Read(buf []byte) (*File, error) {
	hdr, err := readHeader(buf)
	if err != nil {
		return nil, err
	}

	f := &File{Header: hdr}
	off := hdr.FirstIFDOff
	seen := map[uint32]bool{} // guards against a malformed cyclic IFD chain.
	for off != 0 {
		if seen[off] {
			return nil, errContainerFormat("cyclic IFD chain")
		}
		seen[off] = true

		ifd, next, err := readIFD(buf, hdr, off)
		if err != nil {
			return nil, err
		}
		f.IFDs = append(f.IFDs, ifd)
		off = next
	}
	return f, nil
}

func readHeader(buf []byte) (Header, error) {
	if len(buf) < 8 {
		return Header{}, errContainerFormat("tiff: buffer too short for header")
	}

	var order Endianness
	switch binary.BigEndian.Uint16(buf[0:2]) {
	case magicLittleEndian:
		order = LittleEndian
	case magicBigEndian:
		order = BigEndian
	default:
		return Header{}, errContainerFormat("tiff: invalid magic bytes")
	}
	bo := order.ByteOrder()

	version := bo.Uint16(buf[2:4])
	if version < versionClassic {
		return Header{}, errContainerFormat(fmt.Sprintf("tiff: unsupported version %d", version))
	}

	offsetFields := 4
	var firstIFD uint32
	switch version {
	case versionClassic:
		firstIFD = bo.Uint32(buf[4:8])
	case versionBigTIFF:
		// BigTIFF's header additionally declares the constant offset-byte-size
		// (always 8) at [4:6] and a reserved zero at [6:8] before the 8-byte
		// first-IFD offset; only the offset size matters here.
		if len(buf) < 16 {
			return Header{}, errContainerFormat("tiff: buffer too short for BigTIFF header")
		}
		offsetFields = 8
		firstIFD64 := bo.Uint64(buf[8:16])
		if firstIFD64 > 0xffffffff {
			return Header{}, errContainerFormat("tiff: BigTIFF first-IFD offset exceeds 32 bits")
		}
		firstIFD = uint32(firstIFD64)
	default:
		return Header{}, errContainerFormat(fmt.Sprintf("tiff: unsupported version %d for offset size", version))
	}

	return Header{
		Order:        order,
		Version:      version,
		FirstIFDOff:  firstIFD,
		offsetFields: offsetFields,
	}, nil
}

// readIFD reads the IFD located at off, returning its entries and the
// offset of the next IFD (0 terminates the chain).
func readIFD(buf []byte, hdr Header, off uint32) (IFD, uint32, error) {
	bo := hdr.Order.ByteOrder()

	if int(off)+2 > len(buf) {
		return nil, 0, errContainerFormat("tiff: IFD offset out of range")
	}
	count := bo.Uint16(buf[off : off+2])
	if count < 1 {
		return nil, 0, errContainerFormat("tiff: IFD entry count is zero")
	}

	pos := int(off) + 2
	ifd := make(IFD, 0, count)
	for i := 0; i < int(count); i++ {
		if pos+ifdEntrySize > len(buf) {
			return nil, 0, errContainerFormat("tiff: IFD entry out of range")
		}
		entry, err := readEntry(buf, hdr, pos)
		if err != nil {
			return nil, 0, err
		}
		ifd = append(ifd, entry)
		pos += ifdEntrySize
	}

	if pos+hdr.offsetFields > len(buf) {
		return nil, 0, errContainerFormat("tiff: truncated next-IFD offset")
	}
	var next uint32
	if hdr.offsetFields == 8 {
		next64 := bo.Uint64(buf[pos : pos+8])
		if next64 > 0xffffffff {
			return nil, 0, errContainerFormat("tiff: next-IFD offset exceeds 32 bits")
		}
		next = uint32(next64)
	} else {
		next = bo.Uint32(buf[pos : pos+4])
	}

	return ifd, next, nil
}

// readEntry reads one 12-byte IFD entry at buf[pos:] and resolves its
// typed value, following an out-of-line offset if the value doesn't fit
// in the inline value/offset field.
func readEntry(buf []byte, hdr Header, pos int) (Entry, error) {
	bo := hdr.Order.ByteOrder()

	tag := bo.Uint16(buf[pos : pos+2])
	rawType := bo.Uint16(buf[pos+2 : pos+4])
	ftype := FieldType(rawType)
	count := bo.Uint32(buf[pos+4 : pos+8])

	sz := typeSize(ftype)
	if sz == 0 {
		return Entry{}, errContainerFormat(fmt.Sprintf("tiff: unknown field type %d for tag 0x%04x", rawType, tag))
	}
	total := sz * int(count)

	valField := buf[pos+8 : pos+8+hdr.offsetFields]
	var raw []byte
	if total <= hdr.offsetFields {
		raw = valField[:total]
	} else {
		var off uint32
		if hdr.offsetFields == 8 {
			off64 := bo.Uint64(valField)
			if off64 > uint64(len(buf)) {
				return Entry{}, errContainerFormat("tiff: out-of-line value offset out of range")
			}
			off = uint32(off64)
		} else {
			off = bo.Uint32(valField)
		}
		if int(off)+total > len(buf) {
			return Entry{}, errContainerFormat("tiff: out-of-line value extends past end of buffer")
		}
		raw = buf[off : int(off)+total]
	}

	val, err := decodeValue(bo, ftype, count, raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Tag: tag, Value: val}, nil
}

func decodeValue(bo binary.ByteOrder, t FieldType, count uint32, raw []byte) (Value, error) {
	v := Value{Type: t, Count: count}
	n := int(count)

	switch t {
	case Byte, Undefined:
		v.Bytes = append([]byte(nil), raw...)
	case ASCII:
		s := raw
		if i := indexZero(s); i >= 0 {
			s = s[:i]
		}
		v.ASCIIVal = string(s)
	case Short:
		v.Shorts = make([]uint16, n)
		for i := 0; i < n; i++ {
			v.Shorts[i] = bo.Uint16(raw[2*i:])
		}
	case Long:
		v.Longs = make([]uint32, n)
		for i := 0; i < n; i++ {
			v.Longs[i] = bo.Uint32(raw[4*i:])
		}
	case SByte:
		v.SBytes = make([]int8, n)
		for i := 0; i < n; i++ {
			v.SBytes[i] = int8(raw[i])
		}
	case SShort:
		v.SShorts = make([]int16, n)
		for i := 0; i < n; i++ {
			v.SShorts[i] = int16(bo.Uint16(raw[2*i:]))
		}
	case SLong:
		v.SLongs = make([]int32, n)
		for i := 0; i < n; i++ {
			v.SLongs[i] = int32(bo.Uint32(raw[4*i:]))
		}
	case Rational:
		v.Rationals = make([]Rational, n)
		for i := 0; i < n; i++ {
			v.Rationals[i] = Rational{
				Num: int64(bo.Uint32(raw[8*i:])),
				Den: int64(bo.Uint32(raw[8*i+4:])),
			}
		}
	case SRational:
		v.SRationals = make([]Rational, n)
		for i := 0; i < n; i++ {
			v.SRationals[i] = Rational{
				Num: int64(int32(bo.Uint32(raw[8*i:]))),
				Den: int64(int32(bo.Uint32(raw[8*i+4:]))),
			}
		}
	case Float:
		v.Floats = make([]float32, n)
		for i := 0; i < n; i++ {
			v.Floats[i] = float32frombits(bo.Uint32(raw[4*i:]))
		}
	case Double:
		v.Doubles = make([]float64, n)
		for i := 0; i < n; i++ {
			v.Doubles[i] = float64frombits(bo.Uint64(raw[8*i:]))
		}
	default:
		return Value{}, errContainerFormat(fmt.Sprintf("tiff: unknown field type %d", t))
	}
	return v, nil
}

func indexZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
