package mapfile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/codec"
	"github.com/hupe1980/kdmap/model"
)

// ErrInvalidTile is wrapped by every ValidationError.
var ErrInvalidTile = errors.New("mapfile: invalid tile")

// Tile is a single map cell centred on (X, Y).
type Tile struct {
	ID     string  `json:"Id" toml:"Id"`
	Type   string  `json:"Type" toml:"Type"`
	Width  float64 `json:"Width" toml:"Width"`
	Height float64 `json:"Height" toml:"Height"`
	X      float64 `json:"X" toml:"X"`
	Y      float64 `json:"Y" toml:"Y"`
}

// Map is a decoded map document.
type Map struct {
	List []Tile `json:"List" toml:"List"`
}

// ValidationError describes one rejected tile.
type ValidationError struct {
	Index  int
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("mapfile: tile %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("mapfile: tile %d (%q): %s", e.Index, e.ID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTile
}

// Decode parses data with c. A nil codec means codec.Default.
func Decode(data []byte, c codec.Codec) (*Map, error) {
	if c == nil {
		c = codec.Default
	}
	var m Map
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mapfile: decode %s: %w", c.Name(), err)
	}
	return &m, nil
}

// Load reads name from store, decompresses it according to its suffix,
// decodes it with the codec matching its extension and validates it.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*Map, error) {
	c, err := codec.ForPath(name)
	if err != nil {
		return nil, err
	}
	return LoadWith(ctx, store, name, c)
}

// LoadWith is Load with an explicit codec.
func LoadWith(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) (*Map, error) {
	raw, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("mapfile: read %s: %w", name, err)
	}

	data, err := codec.Decompress(raw, codec.CompressionForPath(name))
	if err != nil {
		return nil, fmt.Errorf("mapfile: %s: %w", name, err)
	}

	m, err := Decode(data, c)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes m with c. A nil codec means codec.Default.
func (m *Map) Encode(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("mapfile: encode %s: %w", c.Name(), err)
	}
	return data, nil
}

// Save encodes m for name's extension, compresses it for name's suffix and
// writes it to store.
func (m *Map) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	c, err := codec.ForPath(name)
	if err != nil {
		return err
	}
	data, err := m.Encode(c)
	if err != nil {
		return err
	}
	data, err = codec.Compress(data, codec.CompressionForPath(name))
	if err != nil {
		return fmt.Errorf("mapfile: %s: %w", name, err)
	}
	return store.Put(ctx, name, data)
}

// Validate checks every tile and returns all problems joined together.
func (m *Map) Validate() error {
	var errs []error
	seen := make(map[string]int, len(m.List))

	for i, t := range m.List {
		fail := func(reason string) {
			errs = append(errs, &ValidationError{Index: i, ID: t.ID, Reason: reason})
		}

		if t.ID == "" {
			fail("empty id")
		} else if first, dup := seen[t.ID]; dup {
			fail(fmt.Sprintf("duplicate id, first seen at tile %d", first))
		} else {
			seen[t.ID] = i
		}

		if !finite(t.X) || !finite(t.Y) {
			fail("position is not finite")
		}
		if !finite(t.Width) || !finite(t.Height) {
			fail("size is not finite")
		} else if t.Width < 0 || t.Height < 0 {
			fail("negative size")
		}
	}

	return errors.Join(errs...)
}

// Bounds returns the rectangle covering every tile, or false for an empty map.
func (m *Map) Bounds() (model.Bounds, bool) {
	if len(m.List) == 0 {
		return model.Bounds{}, false
	}
	b := model.EmptyBounds()
	for _, t := range m.List {
		b = b.Extend(t.X, t.Y, t.Width, t.Height)
	}
	return b, true
}

// Records converts the tiles into index records carrying the tile as data.
func (m *Map) Records() []model.Record[Tile] {
	records := make([]model.Record[Tile], len(m.List))
	for i, t := range m.List {
		records[i] = t.Record()
	}
	return records
}

// Types returns the distinct tile types, sorted.
func (m *Map) Types() []string {
	types := make([]string, 0, len(m.List))
	for _, t := range m.List {
		types = append(types, t.Type)
	}
	slices.Sort(types)
	return slices.Compact(types)
}

// Record wraps t in an index record.
func (t Tile) Record() model.Record[Tile] {
	return model.NewRecord(t.ID, t.X, t.Y, t)
}

// Point returns the tile centre.
func (t Tile) Point() model.Point {
	return model.Point{X: t.X, Y: t.Y}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
