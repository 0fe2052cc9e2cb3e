package catalog

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func square(x, y, size float64) [4]cp.Vector {
	return [4]cp.Vector{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func kitchenEntries() []Entry {
	return []Entry{
		{Name: "Broccoli", Corners: square(-1, -1, 2)},
		{Name: "Potato", Corners: square(-1, -1, 2)},
		{Name: "Mushroom", Corners: [4]cp.Vector{{X: -1, Y: -0.5}, {X: 1, Y: -0.5}, {X: 1, Y: 1.5}, {X: -1, Y: 1.5}}},
	}
}

func encode(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entries))
	return buf.Bytes()
}

func TestLoadRoundTrip(t *testing.T) {
	data := encode(t, kitchenEntries())

	c, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"Broccoli", "Mushroom", "Potato"}, c.Names())
	assert.Equal(t, Sum(data), c.Checksum())

	b, err := c.Lookup("Mushroom")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, b.Width(), 1e-6)
	assert.InDelta(t, 2.0, b.Thickness(), 1e-6)
	assert.InDelta(t, -1.0, b.Origin().X, 1e-6)
	assert.InDelta(t, -0.5, b.Origin().Y, 1e-6)
}

func TestLookupReturnsIndependentCopy(t *testing.T) {
	c, err := FromEntries(kitchenEntries())
	require.NoError(t, err)

	b, err := c.Lookup("Potato")
	require.NoError(t, err)
	require.NoError(t, b.InitCenter(cp.Vector{X: 30, Y: 30}))
	b.Orient(cp.Vector{X: 30, Y: 30}, cp.Vector{X: 1, Y: 0})

	again, err := c.Lookup("Potato")
	require.NoError(t, err)
	assert.False(t, again.Centered())
	assert.InDelta(t, 1.0, again.Normal().Y, 1e-9)
	assert.InDelta(t, -1.0, again.Origin().X, 1e-9)
	assert.NoError(t, again.InitCenter(cp.Vector{}))
}

func TestLookupMissingName(t *testing.T) {
	c, err := FromEntries(kitchenEntries())
	require.NoError(t, err)

	_, err = c.Lookup("Carrot")
	assert.ErrorIs(t, err, ErrNotFound)

	// the catalog stays usable after a failed lookup
	b, err := c.Lookup("Broccoli")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, b.Width(), 1e-9)
	assert.False(t, c.Has("Carrot"))
	assert.True(t, c.Has("Broccoli"))
}

func TestDuplicateNamesFirstWins(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	entries := []Entry{
		{Name: "Carrot", Corners: square(0, 0, 1)},
		{Name: "Carrot", Corners: square(0, 0, 5)},
		{Name: "Pot", Corners: square(0, 0, 2)},
	}

	c, err := Load(bytes.NewReader(encode(t, entries)), WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	b, err := c.Lookup("Carrot")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.Width(), 1e-9)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Carrot", entry.ContextMap()["name"])
	assert.EqualValues(t, 1, entry.ContextMap()["record"])
}

// rawResource assembles a bbx blob by hand so tests can break it.
func rawResource(vertices []cp.Vector, strs string, records []record) []byte {
	var vb bytes.Buffer
	for _, v := range vertices {
		_ = binary.Write(&vb, binary.LittleEndian, math.Float32bits(float32(v.X)))
		_ = binary.Write(&vb, binary.LittleEndian, math.Float32bits(float32(v.Y)))
	}
	var ib bytes.Buffer
	_ = binary.Write(&ib, binary.LittleEndian, records)

	var out bytes.Buffer
	_ = writeChunk(&out, tagVertices, vb.Bytes())
	_ = writeChunk(&out, tagStrings, []byte(strs))
	_ = writeChunk(&out, tagIndex, ib.Bytes())
	return out.Bytes()
}

func eightVertices() []cp.Vector {
	a := square(0, 0, 1)
	b := square(2, 2, 1)
	return append(a[:], b[:]...)
}

func TestLoadMalformed(t *testing.T) {
	valid := rawResource(eightVertices(), "AB", []record{{0, 1, 0, 4}, {1, 2, 4, 8}})
	c, err := Load(bytes.NewReader(valid))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	cases := []struct {
		name string
		data []byte
	}{
		{"vertex_range_too_long", rawResource(eightVertices(), "AB", []record{{0, 1, 0, 4}, {0, 2, 2, 10}})},
		{"vertex_range_past_end", rawResource(eightVertices(), "AB", []record{{0, 1, 6, 10}})},
		{"vertex_range_reversed", rawResource(eightVertices(), "AB", []record{{0, 1, 4, 0}})},
		{"vertex_range_short", rawResource(eightVertices(), "AB", []record{{0, 1, 0, 3}})},
		{"name_past_end", rawResource(eightVertices(), "AB", []record{{0, 3, 0, 4}})},
		{"name_reversed", rawResource(eightVertices(), "AB", []record{{2, 1, 0, 4}})},
		{"degenerate_box", rawResource(make([]cp.Vector, 4), "A", []record{{0, 1, 0, 4}})},
		{"empty", nil},
		{"wrong_magic", append([]byte("bbx1"), valid[4:]...)},
		{"truncated", valid[:len(valid)-3]},
		{"odd_vertex_chunk", func() []byte {
			var out bytes.Buffer
			_ = writeChunk(&out, tagVertices, make([]byte, 12))
			_ = writeChunk(&out, tagStrings, nil)
			_ = writeChunk(&out, tagIndex, nil)
			return out.Bytes()
		}()},
		{"odd_index_chunk", func() []byte {
			var out bytes.Buffer
			_ = writeChunk(&out, tagVertices, nil)
			_ = writeChunk(&out, tagStrings, nil)
			_ = writeChunk(&out, tagIndex, make([]byte, 20))
			return out.Bytes()
		}()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cat, err := Load(bytes.NewReader(c.data))
			assert.ErrorIs(t, err, ErrMalformedResource)
			assert.Nil(t, cat)
			assert.Zero(t, cat.Len())
		})
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	c, err := Load(bytes.NewReader(encode(t, nil)))
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	_, err = c.Lookup("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vegetables.bbx")
	require.NoError(t, os.WriteFile(path, encode(t, kitchenEntries()), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.bbx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromEntriesRejectsDegenerate(t *testing.T) {
	_, err := FromEntries([]Entry{{Name: "flat", Corners: square(0, 0, 0)}})
	assert.ErrorIs(t, err, ErrMalformedResource)
}

func TestLoadMirroredWinding(t *testing.T) {
	mirrored := [4]cp.Vector{{X: 1, Y: -0.5}, {X: -1, Y: -0.5}, {X: -1, Y: 1.5}, {X: 1, Y: 1.5}}
	c, err := Load(bytes.NewReader(encode(t, []Entry{{Name: "Mushroom", Corners: mirrored}})))
	require.NoError(t, err)

	b, err := c.Lookup("Mushroom")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, b.Center().X, 1e-6)
	assert.InDelta(t, 0.5, b.Center().Y, 1e-6)
	assert.InDelta(t, -1.0, b.Origin().X, 1e-6)
	assert.InDelta(t, -0.5, b.Origin().Y, 1e-6)
}
