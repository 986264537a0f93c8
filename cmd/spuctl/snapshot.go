package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joshuapare/spukit/internal/writer"
	"github.com/joshuapare/spukit/pkg/spu"
	"github.com/joshuapare/spukit/pkg/types"
)

type pairJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newPairJSON(p types.Pair) *pairJSON {
	return &pairJSON{Key: p.Key.String(), Value: p.Value.String()}
}

func saveSnapshot(c *spu.Client, path string) error {
	if c.Tables() == nil {
		return fmt.Errorf("snapshots need the sim or hybrid backend, not %s", c.Mode())
	}
	if err := writer.Emit(&writer.FileWriter{Path: path}, c.Tables().Save); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// openSnapshot restores a snapshot into a fresh simulation client and returns
// the restored identifiers in their saved order.
func openSnapshot(path string) (*spu.Client, []types.GSID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	opts := spu.DefaultOptions()
	opts.Mode = spu.ModeSim
	opts.Logger = nil
	c, err := spu.Open(opts)
	if err != nil {
		return nil, nil, err
	}
	ids, err := c.Tables().Load(f)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	saved := make([]types.GSID, 0, len(ids))
	for old := range ids {
		saved = append(saved, old)
	}
	sort.Slice(saved, func(i, j int) bool { return saved[i].Seq < saved[j].Seq })
	out := make([]types.GSID, len(saved))
	for i, old := range saved {
		out[i] = ids[old]
	}
	return c, out, nil
}
