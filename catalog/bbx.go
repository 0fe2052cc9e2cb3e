package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// Chunk tags of the bbx format, in file order.
const (
	tagVertices = "bbx0"
	tagStrings  = "str0"
	tagIndex    = "idx0"
)

const (
	vertexSize      = 8  // two float32
	recordSize      = 16 // four uint32
	verticesPerBox  = 4
	chunkHeaderSize = 8
)

type record struct {
	NameBegin   uint32
	NameEnd     uint32
	VertexBegin uint32
	VertexEnd   uint32
}

// Load decodes a bbx resource. Any structural problem aborts the load with
// ErrMalformedResource and no boxes are registered.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return decode(data, opts)
}

// LoadFile decodes the bbx file at path.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Sum returns the checksum Load would report for data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

func decode(data []byte, opts []Option) (*Catalog, error) {
	r := bytes.NewReader(data)

	vertexBytes, err := readChunk(r, tagVertices)
	if err != nil {
		return nil, err
	}
	strs, err := readChunk(r, tagStrings)
	if err != nil {
		return nil, err
	}
	indexBytes, err := readChunk(r, tagIndex)
	if err != nil {
		return nil, err
	}

	if len(vertexBytes)%vertexSize != 0 {
		return nil, fmt.Errorf("%w: %s length %d is not a multiple of %d",
			ErrMalformedResource, tagVertices, len(vertexBytes), vertexSize)
	}
	if len(indexBytes)%recordSize != 0 {
		return nil, fmt.Errorf("%w: %s length %d is not a multiple of %d",
			ErrMalformedResource, tagIndex, len(indexBytes), recordSize)
	}

	vertices := decodeVertices(vertexBytes)
	records := make([]record, len(indexBytes)/recordSize)
	if err := binary.Read(bytes.NewReader(indexBytes), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResource, tagIndex, err)
	}

	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		if err := rec.validate(len(strs), len(vertices)); err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrMalformedResource, i, err)
		}
		var e Entry
		e.Name = string(strs[rec.NameBegin:rec.NameEnd])
		copy(e.Corners[:], vertices[rec.VertexBegin:rec.VertexEnd])
		entries = append(entries, e)
	}

	boxes, err := buildBoxes(entries)
	if err != nil {
		return nil, err
	}

	c := newCatalog(opts)
	if r.Len() > 0 {
		c.log.Warn("catalog: trailing bytes after index chunk ignored", zap.Int("bytes", r.Len()))
	}
	c.checksum = Sum(data)
	c.register(entries, boxes)
	return c, nil
}

func (rec record) validate(stringLen, vertexCount int) error {
	if rec.NameBegin > rec.NameEnd || int(rec.NameEnd) > stringLen {
		return fmt.Errorf("name range [%d, %d) outside %d string bytes", rec.NameBegin, rec.NameEnd, stringLen)
	}
	if rec.VertexBegin >= rec.VertexEnd || rec.VertexEnd-rec.VertexBegin != verticesPerBox {
		return fmt.Errorf("vertex range [%d, %d) must span exactly %d vertices", rec.VertexBegin, rec.VertexEnd, verticesPerBox)
	}
	if int(rec.VertexEnd) > vertexCount {
		return fmt.Errorf("vertex range [%d, %d) outside %d vertices", rec.VertexBegin, rec.VertexEnd, vertexCount)
	}
	return nil
}

func readChunk(r *bytes.Reader, magic string) ([]byte, error) {
	if r.Len() < chunkHeaderSize {
		return nil, fmt.Errorf("%w: missing %s chunk header", ErrMalformedResource, magic)
	}
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, fmt.Errorf("%w: %s tag: %w", ErrMalformedResource, magic, err)
	}
	if string(tag[:]) != magic {
		return nil, fmt.Errorf("%w: expected %s chunk, found %q", ErrMalformedResource, magic, tag[:])
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: %s size: %w", ErrMalformedResource, magic, err)
	}
	if int64(size) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %s declares %d bytes, %d left", ErrMalformedResource, magic, size, r.Len())
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrMalformedResource, magic, err)
	}
	return payload, nil
}

func decodeVertices(b []byte) []cp.Vector {
	out := make([]cp.Vector, len(b)/vertexSize)
	for i := range out {
		x := math.Float32frombits(binary.LittleEndian.Uint32(b[i*vertexSize:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(b[i*vertexSize+4:]))
		out[i] = cp.Vector{X: float64(x), Y: float64(y)}
	}
	return out
}

// Encode writes entries in the bbx format. Names are written as given, so
// duplicates survive the round trip and are resolved by Load.
func Encode(w io.Writer, entries []Entry) error {
	var (
		vertices bytes.Buffer
		strs     bytes.Buffer
		index    = make([]record, 0, len(entries))
	)
	for i, e := range entries {
		nameBegin := strs.Len()
		strs.WriteString(e.Name)
		vertexBegin := i * verticesPerBox
		for _, c := range e.Corners {
			var buf [vertexSize]byte
			binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(c.X)))
			binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(c.Y)))
			vertices.Write(buf[:])
		}
		index = append(index, record{
			NameBegin:   uint32(nameBegin),
			NameEnd:     uint32(strs.Len()),
			VertexBegin: uint32(vertexBegin),
			VertexEnd:   uint32(vertexBegin + verticesPerBox),
		})
	}

	var idx bytes.Buffer
	if err := binary.Write(&idx, binary.LittleEndian, index); err != nil {
		return fmt.Errorf("catalog: encode index: %w", err)
	}

	for _, chunk := range []struct {
		tag  string
		data []byte
	}{
		{tagVertices, vertices.Bytes()},
		{tagStrings, strs.Bytes()},
		{tagIndex, idx.Bytes()},
	} {
		if err := writeChunk(w, chunk.tag, chunk.data); err != nil {
			return err
		}
	}
	return nil
}

func writeChunk(w io.Writer, tag string, data []byte) error {
	var hdr [chunkHeaderSize]byte
	copy(hdr[:4], tag)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("catalog: write %s header: %w", tag, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("catalog: write %s: %w", tag, err)
	}
	return nil
}
