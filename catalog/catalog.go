package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/geom"
	"go.uber.org/zap"
)

var (
	ErrMalformedResource = errors.New("catalog: malformed resource")
	ErrNotFound          = errors.New("catalog: box not found")
)

// Entry is one named box template as four object-space corners.
type Entry struct {
	Name    string
	Corners [4]cp.Vector
}

// Catalog maps template names to boxes. Lookups hand out copies so callers
// can mutate their box without touching the template.
type Catalog struct {
	boxes    map[string]geom.OrientedBox
	checksum uint64
	log      *zap.Logger
}

type Option func(*Catalog)

func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

func newCatalog(opts []Option) *Catalog {
	c := &Catalog{
		boxes: make(map[string]geom.OrientedBox),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromEntries builds a catalog from in-memory entries. It applies the same
// validation and duplicate policy as Load.
func FromEntries(entries []Entry, opts ...Option) (*Catalog, error) {
	boxes, err := buildBoxes(entries)
	if err != nil {
		return nil, err
	}
	c := newCatalog(opts)
	c.register(entries, boxes)
	return c, nil
}

func buildBoxes(entries []Entry) ([]geom.OrientedBox, error) {
	boxes := make([]geom.OrientedBox, len(entries))
	for i, e := range entries {
		b, err := geom.FromCorners(e.Corners)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %w", ErrMalformedResource, i, e.Name, err)
		}
		boxes[i] = b
	}
	return boxes, nil
}

// register inserts validated boxes. The first entry of a name wins.
func (c *Catalog) register(entries []Entry, boxes []geom.OrientedBox) {
	for i, e := range entries {
		if _, exists := c.boxes[e.Name]; exists {
			c.log.Warn("catalog: duplicate box name dropped",
				zap.String("name", e.Name),
				zap.Int("record", i))
			continue
		}
		c.boxes[e.Name] = boxes[i]
	}
	c.log.Debug("catalog: registered boxes", zap.Int("count", len(c.boxes)))
}

// Lookup returns a copy of the named template.
func (c *Catalog) Lookup(name string) (geom.OrientedBox, error) {
	if c == nil {
		return geom.OrientedBox{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	b, ok := c.boxes[name]
	if !ok {
		return geom.OrientedBox{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return b, nil
}

// Has reports whether a template named name exists.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.boxes[name]
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.boxes)
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.boxes))
	for n := range c.boxes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Checksum is the xxhash of the bytes the catalog was decoded from, or zero
// for catalogs built from entries.
func (c *Catalog) Checksum() uint64 {
	if c == nil {
		return 0
	}
	return c.checksum
}
