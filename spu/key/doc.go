// Package key compiles named, variable-width fields into the fixed-width
// multi-word keys the SPU compares.
//
// # Overview
//
// A Schema is an ordered list of fields, each 1 to 32 bits wide. Compile packs
// a set of field values into a types.Key (types.Weight words):
//
//	word 0                          word 1
//	[ A (20 bits) | B low (12 bits) ][ B high (8 bits) | ... ]
//
// The first field occupies the low bits of word 0, later fields follow
// contiguously. A field that crosses a word boundary keeps its low bits in the
// current word and carries the remaining high bits into bit 0 of the next one.
//
// # Usage Example
//
//	type field int
//	const (
//	    tenant field = iota
//	    order
//	)
//
//	s, err := key.NewSchema(
//	    key.Field[field]{Name: tenant, Width: 20},
//	    key.Field[field]{Name: order, Width: 20},
//	)
//	if err != nil {
//	    return err
//	}
//	k := s.Compile(
//	    key.FieldValue[field]{Name: tenant, Data: 7},
//	    key.FieldValue[field]{Name: order, Data: 42},
//	)
//
// # Truncation
//
// Compile never fails. Values missing from the input count as zero, and bits
// past types.KeyBits are dropped without error. Use Fits to check a schema up
// front when truncation is not acceptable.
package key
