package fbx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	modelfbx "github.com/binzume/modelconv/fbx"
)

// binaryMagic opens every binary FBX file, followed by 0x1A 0x00 and a
// little-endian uint32 version.
const binaryMagic = "Kaydara FBX Binary  \x00"

const binaryHeaderSize = len(binaryMagic) + 2 + 4

// maxInflateRatio bounds how much a zlib array may expand. Deflate cannot
// exceed 1032:1; the slack covers the zlib header and tiny payloads.
const (
	maxInflateRatio = 1032
	inflateSlack    = 1024
)

func isBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(binaryMagic))
}

// parseBinary decodes a binary FBX file with modelconv and converts its
// record tree into elements. The returned root has no name; its children
// are the top-level records.
func parseBinary(data []byte) (*Element, uint32, error) {
	if len(data) < binaryHeaderSize || !isBinary(data) {
		return nil, 0, ErrNotFBX
	}
	version := binary.LittleEndian.Uint32(data[len(binaryMagic)+2:])
	if err := checkRecords(data, version >= 7500); err != nil {
		return nil, version, err
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, version, err
	}
	root := &Element{}
	for _, n := range doc.RawNode.Children {
		root.Children = append(root.Children, fromNode(n))
	}
	return root, version, nil
}

func parseDocument(data []byte) (doc *modelfbx.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrTruncated, r)
		}
	}()
	doc, err = modelfbx.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fbx: decode binary: %w", err)
	}
	if doc == nil || doc.RawNode == nil {
		return nil, fmt.Errorf("%w: empty document", ErrTruncated)
	}
	return doc, nil
}

func fromNode(n *modelfbx.Node) *Element {
	el := &Element{Name: n.Name, Props: make([]any, len(n.Attributes))}
	for i, a := range n.Attributes {
		el.Props[i] = a.Value
	}
	for _, c := range n.Children {
		el.Children = append(el.Children, fromNode(c))
	}
	return el
}

// checkRecords walks the record headers and array descriptors without
// decoding anything, so a corrupt length fails before a decoder sizes a
// buffer from it.
func checkRecords(data []byte, wide bool) error {
	s := &scanner{data: data, off: binaryHeaderSize, wide: wide}
	for len(s.data)-s.off >= s.nullRecordSize() {
		done, err := s.record()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return nil
}

type scanner struct {
	data []byte
	off  int
	wide bool // 64-bit record header fields (version 7500+)
}

func (s *scanner) nullRecordSize() int {
	if s.wide {
		return 25
	}
	return 13
}

func (s *scanner) need(n uint64) error {
	if n > uint64(len(s.data)-s.off) {
		return fmt.Errorf("%w at offset %d", ErrTruncated, s.off)
	}
	return nil
}

func (s *scanner) u32() (uint64, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(s.data[s.off:])
	s.off += 4
	return uint64(v), nil
}

func (s *scanner) header() (uint64, error) {
	if !s.wide {
		return s.u32()
	}
	if err := s.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(s.data[s.off:])
	s.off += 8
	return v, nil
}

// record checks one record and its children. done reports the null record
// that terminates a record list.
func (s *scanner) record() (done bool, err error) {
	start := s.off
	endOffset, err := s.header()
	if err != nil {
		return false, err
	}
	numProps, err := s.header()
	if err != nil {
		return false, err
	}
	propLen, err := s.header()
	if err != nil {
		return false, err
	}
	if err := s.need(1); err != nil {
		return false, err
	}
	nameLen := uint64(s.data[s.off])
	s.off++
	if endOffset == 0 {
		return true, nil
	}
	if endOffset > uint64(len(s.data)) || endOffset <= uint64(start) {
		return false, fmt.Errorf("%w: record end %d outside file", ErrTruncated, endOffset)
	}
	if err := s.need(nameLen); err != nil {
		return false, err
	}
	s.off += int(nameLen)

	propsEnd := uint64(s.off) + propLen
	if propsEnd > endOffset {
		return false, fmt.Errorf("%w: property list ends past record at offset %d", ErrTruncated, start)
	}
	for i := uint64(0); i < numProps; i++ {
		if err := s.property(int(propsEnd)); err != nil {
			return false, err
		}
	}

	s.off = int(propsEnd)
	for s.off < int(endOffset) {
		done, err := s.record()
		if err != nil {
			return false, err
		}
		if done {
			break
		}
	}
	s.off = int(endOffset)
	return false, nil
}

func (s *scanner) property(end int) error {
	if s.off >= end {
		return fmt.Errorf("%w: property past list end at offset %d", ErrTruncated, s.off)
	}
	code := s.data[s.off]
	s.off++

	var size uint64
	switch code {
	case 'C':
		size = 1
	case 'Y':
		size = 2
	case 'I', 'F':
		size = 4
	case 'D', 'L':
		size = 8
	case 'S', 'R':
		n, err := s.u32()
		if err != nil {
			return err
		}
		size = n
	case 'f', 'i', 'd', 'l', 'b':
		return s.array(code)
	default:
		return fmt.Errorf("fbx: unknown property type %q at offset %d", code, s.off-1)
	}
	if err := s.need(size); err != nil {
		return err
	}
	s.off += int(size)
	return nil
}

func (s *scanner) array(code byte) error {
	at := s.off
	count, err := s.u32()
	if err != nil {
		return err
	}
	encoding, err := s.u32()
	if err != nil {
		return err
	}
	compLen, err := s.u32()
	if err != nil {
		return err
	}
	if err := s.need(compLen); err != nil {
		return err
	}

	elemSize := uint64(4)
	switch code {
	case 'd', 'l':
		elemSize = 8
	case 'b':
		elemSize = 1
	}
	size := count * elemSize
	switch encoding {
	case 0:
		if size != compLen {
			return fmt.Errorf("%w: array at offset %d holds %d bytes, declares %d", ErrTruncated, at, compLen, size)
		}
	case 1:
		if size > compLen*maxInflateRatio+inflateSlack {
			return fmt.Errorf("%w: array at offset %d claims %d elements from %d compressed bytes", ErrTruncated, at, count, compLen)
		}
	default:
		return fmt.Errorf("fbx: unknown array encoding %d at offset %d", encoding, at)
	}
	s.off += int(compLen)
	return nil
}
