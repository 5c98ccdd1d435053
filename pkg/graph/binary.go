package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"multich/pkg/costvec"
)

const (
	magicBytes = "MULTICH1"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

// fileHeader is the binary header for a persisted hierarchy.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	Dim      uint32
	NumNodes uint32
	NumEdges uint32
}

// Hierarchy is the final output of a completed contraction: every
// node's stable id and assigned level, plus the full edge set (original
// and shortcut) in Registry id order.
type Hierarchy struct {
	NodeIDs []NodeId
	Levels  []uint32 // parallel to NodeIDs
	Edges   []Edge
}

// WriteBinary serializes a Hierarchy to path, using unsafe.Slice for
// zero-copy I/O on the fixed-width columns and a trailing CRC32 over
// the whole body.
func WriteBinary(path string, h *Hierarchy) error {
	if len(h.NodeIDs) != len(h.Levels) {
		return fmt.Errorf("graph: NodeIDs and Levels length mismatch: %d != %d", len(h.NodeIDs), len(h.Levels))
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	dim := 0
	if len(h.Edges) > 0 {
		dim = h.Edges[0].Cost.Len()
	}

	hdr := fileHeader{
		Version:  version,
		Dim:      uint32(dim),
		NumNodes: uint32(len(h.NodeIDs)),
		NumEdges: uint32(len(h.Edges)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	nodeIDs := make([]uint32, len(h.NodeIDs))
	for i, id := range h.NodeIDs {
		nodeIDs[i] = uint32(id)
	}
	if err := writeUint32Slice(cw, nodeIDs); err != nil {
		return fmt.Errorf("write NodeIDs: %w", err)
	}
	if err := writeUint32Slice(cw, h.Levels); err != nil {
		return fmt.Errorf("write Levels: %w", err)
	}

	src := make([]uint32, len(h.Edges))
	dst := make([]uint32, len(h.Edges))
	child1 := make([]uint32, len(h.Edges))
	child2 := make([]uint32, len(h.Edges))
	costs := make([]float64, len(h.Edges)*dim)
	for i, e := range h.Edges {
		src[i] = uint32(e.Src)
		dst[i] = uint32(e.Dst)
		child1[i] = uint32(e.Child1)
		child2[i] = uint32(e.Child2)
		for k := 0; k < dim; k++ {
			costs[i*dim+k] = e.Cost.At(k)
		}
	}
	if err := writeUint32Slice(cw, src); err != nil {
		return fmt.Errorf("write edge Src: %w", err)
	}
	if err := writeUint32Slice(cw, dst); err != nil {
		return fmt.Errorf("write edge Dst: %w", err)
	}
	if err := writeUint32Slice(cw, child1); err != nil {
		return fmt.Errorf("write edge Child1: %w", err)
	}
	if err := writeUint32Slice(cw, child2); err != nil {
		return fmt.Errorf("write edge Child2: %w", err)
	}
	if err := writeFloat64Slice(cw, costs); err != nil {
		return fmt.Errorf("write edge Cost: %w", err)
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a Hierarchy from path, validating the header
// magic, version, and trailing CRC32.
func ReadBinary(path string) (*Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	rawIDs, err := readUint32Slice(cr, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read NodeIDs: %w", err)
	}
	levels, err := readUint32Slice(cr, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read Levels: %w", err)
	}

	src, err := readUint32Slice(cr, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read edge Src: %w", err)
	}
	dst, err := readUint32Slice(cr, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read edge Dst: %w", err)
	}
	child1, err := readUint32Slice(cr, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read edge Child1: %w", err)
	}
	child2, err := readUint32Slice(cr, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read edge Child2: %w", err)
	}
	costs, err := readFloat64Slice(cr, int(hdr.NumEdges)*int(hdr.Dim))
	if err != nil {
		return nil, fmt.Errorf("read edge Cost: %w", err)
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	nodeIDs := make([]NodeId, len(rawIDs))
	for i, v := range rawIDs {
		nodeIDs[i] = NodeId(v)
	}

	dim := int(hdr.Dim)
	edges := make([]Edge, hdr.NumEdges)
	for i := range edges {
		edges[i] = Edge{
			Src:    NodeId(src[i]),
			Dst:    NodeId(dst[i]),
			Cost:   costvec.New(costs[i*dim : i*dim+dim]...),
			Child1: EdgeId(child1[i]),
			Child2: EdgeId(child2[i]),
		}
	}

	return &Hierarchy{NodeIDs: nodeIDs, Levels: levels, Edges: edges}, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
