package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/spukit/internal/batchtext"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/structure"
)

var (
	queryTable  int
	queryFlags  string
	querySchema string
)

func init() {
	rootCmd.AddCommand(newQueryCmd())
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <snapshot> <op> [key]",
		Short: "Run one query against a saved structure",
		Long: `The query command restores a CBOR snapshot written by load --snapshot and
runs one query against one of its structures.

Operations: search, min, max, next, prev, nsm, ngr. Every operation except
min and max needs a key: an integer, or field assignments with --schema.

Example:
  spuctl query pairs.cbor min
  spuctl query pairs.cbor ngr 0x10
  spuctl query pairs.cbor search "a=1 b=2" --schema "a:20 b:20"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args)
		},
	}
	cmd.Flags().IntVar(&queryTable, "table", 0, "Structure index inside the snapshot")
	cmd.Flags().StringVar(&queryFlags, "flags", "P", "Modifier flags: any of P, Q, R, or - for none")
	cmd.Flags().StringVar(&querySchema, "schema", "", "Field list for compiling the key argument")
	return cmd
}

type queryResult struct {
	Op     string `json:"op"`
	Status string `json:"status"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

type queryFunc func(s *structure.Structure, ctx context.Context, k types.Key, f types.Flags) (types.Pair, error)

var queries = map[string]queryFunc{
	"search": (*structure.Structure).Search,
	"next":   (*structure.Structure).Next,
	"prev":   (*structure.Structure).Prev,
	"nsm":    (*structure.Structure).NSM,
	"ngr":    (*structure.Structure).NGR,
	"min": func(s *structure.Structure, ctx context.Context, _ types.Key, f types.Flags) (types.Pair, error) {
		return s.Min(ctx, f)
	},
	"max": func(s *structure.Structure, ctx context.Context, _ types.Key, f types.Flags) (types.Pair, error) {
		return s.Max(ctx, f)
	},
}

func parseFlags(s string) (types.Flags, error) {
	var f types.Flags
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'P':
			f |= types.PFlag
		case 'Q':
			f |= types.QFlag
		case 'R':
			f |= types.RFlag
		case '-':
		default:
			return 0, fmt.Errorf("unknown flag %q", r)
		}
	}
	return f, nil
}

func parseKey(arg string) (types.Key, error) {
	if querySchema != "" {
		schema, err := batchtext.ParseSchema(querySchema)
		if err != nil {
			return types.Key{}, fmt.Errorf("schema: %w", err)
		}
		return batchtext.CompileFields(arg, schema)
	}
	v, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return types.Key{}, fmt.Errorf("key: %w", err)
	}
	return types.KeyOf(v), nil
}

func runQuery(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	op := strings.ToLower(args[1])
	q, ok := queries[op]
	if !ok {
		return fmt.Errorf("unknown operation %q", args[1])
	}
	var k types.Key
	if op != "min" && op != "max" {
		if len(args) < 3 {
			return fmt.Errorf("%s needs a key", op)
		}
		var err error
		if k, err = parseKey(args[2]); err != nil {
			return err
		}
	}
	flags, err := parseFlags(queryFlags)
	if err != nil {
		return err
	}

	c, ids, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer c.Close()
	if queryTable < 0 || queryTable >= len(ids) {
		return fmt.Errorf("table %d out of range (snapshot has %d)", queryTable, len(ids))
	}

	s, err := structure.Attach(c.Backend(), ids[queryTable], structure.Options{})
	if err != nil {
		return err
	}
	p, err := q(s, ctx, k, flags)
	if err != nil {
		return err
	}

	res := queryResult{Op: op, Status: p.Status.String()}
	if p.OK() {
		res.Key, res.Value = p.Key.String(), p.Value.String()
	}
	if jsonOut {
		return printJSON(res)
	}
	if !p.OK() {
		printInfo("%s: no result\n", op)
		return nil
	}
	printInfo("%s => %s\n", res.Key, res.Value)
	return nil
}
