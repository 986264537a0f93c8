package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/structure"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <snapshot>",
		Short: "List the structures stored in a snapshot",
		Long: `The info command restores a CBOR snapshot and reports every structure with
its power, minimum and maximum key.

Example:
  spuctl info pairs.cbor
  spuctl info pairs.cbor --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args)
		},
	}
	return cmd
}

type tableInfo struct {
	Index int       `json:"index"`
	Power uint32    `json:"power"`
	Min   *pairJSON `json:"min,omitempty"`
	Max   *pairJSON `json:"max,omitempty"`
}

func runInfo(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c, ids, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	tables := make([]tableInfo, 0, len(ids))
	for i, id := range ids {
		s, err := structure.Attach(c.Backend(), id, structure.Options{})
		if err != nil {
			return err
		}
		ti := tableInfo{Index: i}
		if ti.Power, err = s.Power(); err != nil {
			return err
		}
		if p, err := s.Min(ctx, types.DefaultQueryFlags); err == nil && p.OK() {
			ti.Min = newPairJSON(p)
		}
		if p, err := s.Max(ctx, types.DefaultQueryFlags); err == nil && p.OK() {
			ti.Max = newPairJSON(p)
		}
		tables = append(tables, ti)
	}

	if jsonOut {
		return printJSON(tables)
	}
	printInfo("\nSnapshot: %s\n", args[0])
	printInfo("  Structures: %d\n", len(tables))
	for _, ti := range tables {
		printInfo("  [%d] power=%d", ti.Index, ti.Power)
		if ti.Min != nil {
			printInfo(" min=%s", ti.Min.Key)
		}
		if ti.Max != nil {
			printInfo(" max=%s", ti.Max.Key)
		}
		printInfo("\n")
	}
	return nil
}
