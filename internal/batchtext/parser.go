// Package batchtext parses batch insert files for spuctl.
//
// A batch file holds one entry per line. Without a schema an entry is two
// integers, the key and the value:
//
//	# key : value
//	0x10 : 100
//	17   : 0xff
//
// A schema directive switches the lines that follow to named fields, packed
// with spu/key in declaration order:
//
//	@schema region:8 shard:12 id:32
//	region=1 shard=7 id=1000 : 42
//
// Integers accept Go prefixes (0x, 0o, 0b). Input defaults to Windows-1252,
// the encoding most exporters on Linux emit; a UTF-8 or UTF-16 byte order mark
// overrides it.
package batchtext

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/key"
)

// Options configures parsing.
type Options struct {
	// Encoding of the input when it carries no byte order mark:
	// EncodingWindows1252 (default) or EncodingUTF8.
	Encoding string
}

// File is a parsed batch.
type File struct {
	// Schema is the last schema declared, nil for raw files.
	Schema  *key.Schema[string]
	Entries []types.Entry
}

// Parse reads a batch file from r.
func Parse(r io.Reader, opts Options) (*File, error) {
	var fallback transform.Transformer
	switch strings.ToUpper(opts.Encoding) {
	case "", EncodingWindows1252:
		fallback = charmap.Windows1252.NewDecoder()
	case EncodingUTF8:
		fallback = unicode.UTF8.NewDecoder()
	default:
		return nil, types.NewError(types.ErrKindFormat, nil, "batchtext: unsupported encoding %q", opts.Encoding)
	}
	utf8Reader := transform.NewReader(r, unicode.BOMOverride(fallback))

	scanner := bufio.NewScanner(utf8Reader)
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	f := &File{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		if rest, ok := strings.CutPrefix(line, SchemaDirective); ok {
			s, err := ParseSchema(rest)
			if err != nil {
				return nil, lineError(lineNo, err)
			}
			f.Schema = s
			continue
		}

		e, err := parseEntry(line, f.Schema)
		if err != nil {
			return nil, lineError(lineNo, err)
		}
		f.Entries = append(f.Entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning batch file: %w", err)
	}
	return f, nil
}

func lineError(n int, err error) error {
	return types.NewError(types.ErrKindFormat, err, "batchtext: line %d", n)
}

// ParseSchema parses the field list of a schema directive ("a:8 b:24").
func ParseSchema(rest string) (*key.Schema[string], error) {
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	fields := make([]key.Field[string], 0, len(tokens))
	for _, tok := range tokens {
		name, width, ok := strings.Cut(tok, WidthSeparator)
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q: want name:width", tok)
		}
		w, err := strconv.ParseUint(width, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, key.Field[string]{Name: name, Width: uint(w)})
	}
	return key.NewSchema(fields...)
}

func parseEntry(line string, schema *key.Schema[string]) (types.Entry, error) {
	keyPart, valuePart, ok := strings.Cut(line, ValueSeparator)
	if !ok {
		return types.Entry{}, fmt.Errorf("missing %q between key and value", ValueSeparator)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(valuePart), 0, 64)
	if err != nil {
		return types.Entry{}, fmt.Errorf("value: %w", err)
	}

	var k types.Key
	if schema == nil {
		raw, err := strconv.ParseUint(strings.TrimSpace(keyPart), 0, 64)
		if err != nil {
			return types.Entry{}, fmt.Errorf("key: %w", err)
		}
		k = types.KeyOf(raw)
	} else {
		k, err = CompileFields(keyPart, schema)
		if err != nil {
			return types.Entry{}, err
		}
	}
	return types.Entry{Key: k, Value: types.ValueOf(v)}, nil
}

// CompileFields parses "name=value" tokens and packs them with schema.
func CompileFields(keyPart string, schema *key.Schema[string]) (types.Key, error) {
	tokens := strings.Fields(keyPart)
	values := make([]key.FieldValue[string], 0, len(tokens))
	for _, tok := range tokens {
		name, raw, ok := strings.Cut(tok, FieldAssignment)
		if !ok || name == "" {
			return types.Key{}, fmt.Errorf("field %q: want name=value", tok)
		}
		d, err := strconv.ParseUint(raw, 0, 32)
		if err != nil {
			return types.Key{}, fmt.Errorf("field %q: %w", name, err)
		}
		values = append(values, key.FieldValue[string]{Name: name, Data: uint32(d)})
	}
	return schema.Compile(values...), nil
}
