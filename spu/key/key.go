package key

import (
	"errors"
	"fmt"

	"github.com/joshuapare/spukit/pkg/types"
)

// MaxFieldWidth is the widest field a schema accepts (one bus word).
const MaxFieldWidth = types.WordBits

// ErrFieldWidth indicates a field declared with a width outside 1..32.
var ErrFieldWidth = errors.New("key: field width must be between 1 and 32")

// Field declares one named field of a schema.
type Field[N comparable] struct {
	Name  N
	Width uint
}

// FieldValue carries the data for one field. Only the low Width bits of Data
// are used.
type FieldValue[N comparable] struct {
	Name N
	Data uint32
}

// Schema is an ordered, immutable list of fields. It is safe for concurrent use.
type Schema[N comparable] struct {
	fields []Field[N]
	width  uint
}

// NewSchema validates the field widths and returns a schema in declaration order.
func NewSchema[N comparable](fields ...Field[N]) (*Schema[N], error) {
	s := &Schema[N]{fields: make([]Field[N], len(fields))}
	for i, f := range fields {
		if f.Width == 0 || f.Width > MaxFieldWidth {
			return nil, fmt.Errorf("%w: field %d (%v) has width %d", ErrFieldWidth, i, f.Name, f.Width)
		}
		s.fields[i] = f
		s.width += f.Width
	}
	return s, nil
}

// Fields returns a copy of the schema's fields.
func (s *Schema[N]) Fields() []Field[N] {
	out := make([]Field[N], len(s.fields))
	copy(out, s.fields)
	return out
}

// Width is the total declared width in bits.
func (s *Schema[N]) Width() uint { return s.width }

// Fits reports whether the declared width fits in one key. Schemas that do not
// fit still compile; the excess bits are truncated.
func (s *Schema[N]) Fits() bool { return s.width <= types.KeyBits }

// Compile packs values into a key. See the package documentation for the
// bit layout. Compile is a pure function of the schema and values.
func (s *Schema[N]) Compile(values ...FieldValue[N]) types.Key {
	var k types.Key
	var shift uint // bit position inside the current word
	word := 0

	for _, f := range s.fields {
		field := lookup(values, f.Name) & Mask(f.Width)

		// A shift of 32 or more yields zero, which is how bits past the
		// last word are dropped.
		k[word] |= field << shift

		prev := shift
		shift += f.Width

		if shift >= types.WordBits && word < types.Weight-1 {
			shift -= types.WordBits
			word++

			// Carry the bits that were shifted past bit 31.
			k[word] |= field >> (types.WordBits - prev) & Mask(shift)
		}
	}
	return k
}

// Extract decodes a single field from a compiled key. It returns false when
// name is not part of the schema. Fields that were truncated read back as
// their surviving low bits.
func (s *Schema[N]) Extract(k types.Key, name N) (uint32, bool) {
	var pos uint
	for _, f := range s.fields {
		if f.Name != name {
			pos += f.Width
			continue
		}
		word := int(pos / types.WordBits)
		lo := pos % types.WordBits
		if word >= types.Weight {
			return 0, true
		}
		v := k[word] >> lo
		if lo+f.Width > types.WordBits && word+1 < types.Weight {
			v |= k[word+1] << (types.WordBits - lo)
		}
		return v & Mask(f.Width), true
	}
	return 0, false
}

// Mask returns a word with the low width bits set.
func Mask(width uint) uint32 {
	if width >= types.WordBits {
		return ^uint32(0)
	}
	return uint32(1)<<width - 1
}

// lookup returns the data of the first value named name, or zero.
func lookup[N comparable](values []FieldValue[N], name N) uint32 {
	for _, v := range values {
		if v.Name == name {
			return v.Data
		}
	}
	return 0
}
