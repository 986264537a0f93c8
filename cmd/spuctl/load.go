package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/spukit/internal/batchtext"
	"github.com/joshuapare/spukit/pkg/spu"
	"github.com/joshuapare/spukit/pkg/types"
)

var (
	loadSnapshot string
	loadEncoding string
)

func init() {
	rootCmd.AddCommand(newLoadCmd())
}

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <batch-file>",
		Short: "Insert a batch file into a new structure",
		Long: `The load command creates a structure, inserts every entry of a batch file in
order, and reports the resulting power, minimum and maximum. Insertion stops at
the first entry that fails. With --snapshot the simulation tables are saved as
CBOR for later use with query and info.

Example:
  spuctl load pairs.txt
  spuctl load pairs.txt --snapshot pairs.cbor
  spuctl load pairs.txt --device /sys/bus/pci/devices/0000:03:00.0/resource0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&loadSnapshot, "snapshot", "", "Save the simulation tables to this file")
	cmd.Flags().StringVar(&loadEncoding, "encoding", "", "Input encoding without BOM: windows-1252 (default) or utf-8")
	return cmd
}

type loadResult struct {
	Structure string    `json:"structure"`
	Mode      string    `json:"mode"`
	Entries   int       `json:"entries"`
	Status    string    `json:"status"`
	Power     uint32    `json:"power"`
	Min       *pairJSON `json:"min,omitempty"`
	Max       *pairJSON `json:"max,omitempty"`
}

func runLoad(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := batchtext.Parse(f, batchtext.Options{Encoding: loadEncoding})
	if err != nil {
		return err
	}
	printVerbose("Parsed %d entries from %s\n", len(batch.Entries), args[0])

	opts, err := clientOptions()
	if err != nil {
		return err
	}
	c, err := spu.Open(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := c.New(ctx)
	if err != nil {
		return err
	}
	st, err := s.InsertBatch(ctx, batch.Entries, types.DefaultInsertFlags)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	res := loadResult{
		Structure: s.ID().String(),
		Mode:      c.Mode().String(),
		Entries:   len(batch.Entries),
		Status:    st.String(),
	}
	if res.Power, err = s.Power(); err != nil {
		return err
	}
	if p, err := s.Min(ctx, types.DefaultQueryFlags); err == nil && p.OK() {
		res.Min = newPairJSON(p)
	}
	if p, err := s.Max(ctx, types.DefaultQueryFlags); err == nil && p.OK() {
		res.Max = newPairJSON(p)
	}

	if loadSnapshot != "" {
		if err := saveSnapshot(c, loadSnapshot); err != nil {
			return err
		}
		printVerbose("Saved snapshot to %s\n", loadSnapshot)
	}

	if jsonOut {
		return printJSON(res)
	}
	printLoadResult(res)
	if st != types.StatusOK {
		return fmt.Errorf("batch stopped with status %s", st)
	}
	return nil
}

func printLoadResult(res loadResult) {
	printInfo("Structure: %s (%s)\n", res.Structure, res.Mode)
	printInfo("  Entries: %d\n", res.Entries)
	printInfo("  Status:  %s\n", res.Status)
	printInfo("  Power:   %d\n", res.Power)
	if res.Min != nil {
		printInfo("  Min:     %s => %s\n", res.Min.Key, res.Min.Value)
	}
	if res.Max != nil {
		printInfo("  Max:     %s => %s\n", res.Max.Key, res.Max.Value)
	}
}
