package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/spukit/internal/batchtext"
	"github.com/joshuapare/spukit/pkg/types"
)

var keygenSchema string

func init() {
	rootCmd.AddCommand(newKeygenCmd())
}

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen name=value...",
		Short: "Pack field values into a key",
		Long: `The keygen command packs named field values into key words using a
schema, the same way batch files with an @schema directive are compiled.

Example:
  spuctl keygen --schema "region:8 shard:12 id:32" region=1 shard=7 id=1000
  spuctl keygen --schema "a:20 b:20" a=1 b=2 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(args)
		},
	}
	cmd.Flags().StringVar(&keygenSchema, "schema", "", "Field list, e.g. \"a:20 b:20\" (required)")
	return cmd
}

type keygenResult struct {
	Key   string   `json:"key"`
	Words []uint32 `json:"words"`
	Width uint     `json:"width"`
	Fits  bool     `json:"fits"`
}

func runKeygen(args []string) error {
	if keygenSchema == "" {
		return fmt.Errorf("--schema is required")
	}
	schema, err := batchtext.ParseSchema(keygenSchema)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	k, err := batchtext.CompileFields(strings.Join(args, " "), schema)
	if err != nil {
		return err
	}

	res := keygenResult{Key: k.String(), Words: k[:], Width: schema.Width(), Fits: schema.Fits()}
	if jsonOut {
		return printJSON(res)
	}
	printInfo("%s\n", res.Key)
	for i := 0; i < types.Weight; i++ {
		printVerbose("  word %d: 0x%08x\n", i, k[i])
	}
	if !res.Fits {
		printInfo("warning: schema is %d bits, key holds %d; high fields were truncated\n", res.Width, types.KeyBits)
	}
	return nil
}
