// Package meshdump writes baked section meshes to a compressed stream for
// offline inspection, and reads them back.
//
// Stream layout before compression, little endian:
//
//	header: magic "MSHD" | version u16 | run id [16]byte
//	record: coord 3 x i32 | pass u8 | ranges 7 x (start u32, count u32) |
//	        payload length u32 | xxhash64 of payload u64 | payload
//
// The whole stream is zstd compressed.
package meshdump

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/midgard-mesh/internal/engine/meshbuf"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
)

const (
	magic   = "MSHD"
	version = 1

	// Sanity limit for one payload: every block of a section emitting every
	// face into one pass, with generous headroom.
	maxPayload = 64 << 20
)

var (
	// ErrFormat reports a stream that is not a mesh dump.
	ErrFormat = errors.New("meshdump: bad format")
	// ErrChecksum reports a payload that does not match its checksum.
	ErrChecksum = errors.New("meshdump: checksum mismatch")
)

// Record is one baked pass of one section.
type Record struct {
	Coord  section.Coord
	Pass   render.Pass
	Ranges [render.FacingCount]meshbuf.VertexRange
	Buffer []byte
}

type recordHeader struct {
	X, Y, Z int32
	Pass    uint8
	Ranges  [render.FacingCount][2]uint32
	Length  uint32
	Sum     uint64
}

// Writer appends records to a compressed stream.
type Writer struct {
	enc     *zstd.Encoder
	runID   uuid.UUID
	records int
}

// NewWriter writes the stream header for runID and returns a Writer.
func NewWriter(w io.Writer, runID uuid.UUID) (*Writer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("meshdump: %w", err)
	}
	if _, err := io.WriteString(enc, magic); err != nil {
		return nil, err
	}
	if err := binary.Write(enc, binary.LittleEndian, uint16(version)); err != nil {
		return nil, err
	}
	if _, err := enc.Write(runID[:]); err != nil {
		return nil, err
	}
	return &Writer{enc: enc, runID: runID}, nil
}

// Write appends one baked pass. The parts are not released.
func (w *Writer) Write(coord section.Coord, parts *meshbuf.BakedMeshParts) error {
	h := recordHeader{
		X: coord.X, Y: coord.Y, Z: coord.Z,
		Pass:   uint8(parts.Pass),
		Length: uint32(len(parts.Buffer)),
		Sum:    xxhash.Sum64(parts.Buffer),
	}
	for i, r := range parts.Ranges {
		h.Ranges[i] = [2]uint32{r.Start, r.Count}
	}
	if err := binary.Write(w.enc, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("meshdump: writing record header: %w", err)
	}
	if _, err := w.enc.Write(parts.Buffer); err != nil {
		return fmt.Errorf("meshdump: writing payload: %w", err)
	}
	w.records++
	return nil
}

// Records returns the number of records written.
func (w *Writer) Records() int {
	return w.records
}

// Close flushes the compressed stream. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	return w.enc.Close()
}

// Reader reads records back from a stream produced by Writer.
type Reader struct {
	dec   *zstd.Decoder
	r     *bufio.Reader
	RunID uuid.UUID
}

// NewReader reads and checks the stream header.
func NewReader(r io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("meshdump: %w", err)
	}
	rd := &Reader{dec: dec, r: bufio.NewReader(dec)}

	var hdr [len(magic) + 2 + 16]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		dec.Close()
		return nil, fmt.Errorf("%w: reading header: %w", ErrFormat, err)
	}
	if string(hdr[:len(magic)]) != magic {
		dec.Close()
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, hdr[:len(magic)])
	}
	if v := binary.LittleEndian.Uint16(hdr[len(magic):]); v != version {
		dec.Close()
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, v)
	}
	copy(rd.RunID[:], hdr[len(magic)+2:])
	return rd, nil
}

// Next returns the next record, or io.EOF at the end of the stream.
func (rd *Reader) Next() (Record, error) {
	var h recordHeader
	if err := binary.Read(rd.r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("%w: reading record header: %w", ErrFormat, err)
	}
	if h.Length > maxPayload || int(h.Pass) >= render.PassCount {
		return Record{}, fmt.Errorf("%w: implausible record (pass %d, %d bytes)", ErrFormat, h.Pass, h.Length)
	}

	rec := Record{
		Coord:  section.Coord{X: h.X, Y: h.Y, Z: h.Z},
		Pass:   render.Pass(h.Pass),
		Buffer: make([]byte, h.Length),
	}
	for i, r := range h.Ranges {
		rec.Ranges[i] = meshbuf.VertexRange{Start: r[0], Count: r[1]}
	}
	if _, err := io.ReadFull(rd.r, rec.Buffer); err != nil {
		return Record{}, fmt.Errorf("%w: reading payload: %w", ErrFormat, err)
	}
	if xxhash.Sum64(rec.Buffer) != h.Sum {
		return Record{}, fmt.Errorf("%w: section %s pass %s", ErrChecksum, rec.Coord, rec.Pass)
	}
	return rec, nil
}

// Close releases the decoder.
func (rd *Reader) Close() {
	rd.dec.Close()
}
