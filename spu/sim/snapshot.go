package sim

import (
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/joshuapare/spukit/internal/ordered"
	"github.com/joshuapare/spukit/pkg/types"
)

// snapshotVersion is bumped whenever the encoded shape changes.
const snapshotVersion = 1

type snapshot struct {
	Version uint8           `cbor:"1,keyasint"`
	Tables  []tableSnapshot `cbor:"2,keyasint"`
}

type tableSnapshot struct {
	Domain []byte        `cbor:"1,keyasint"`
	Seq    uint64        `cbor:"2,keyasint"`
	Keys   []types.Key   `cbor:"3,keyasint"`
	Values []types.Value `cbor:"4,keyasint"`
}

// Save writes every live table to w as deterministic CBOR, ordered by
// identifier sequence.
func (t *Tables) Save(w io.Writer) error {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return err
	}

	t.mu.Lock()
	snap := snapshot{Version: snapshotVersion, Tables: make([]tableSnapshot, 0, len(t.tables))}
	for id, m := range t.tables {
		ts := tableSnapshot{
			Domain: id.Domain[:],
			Seq:    id.Seq,
			Keys:   make([]types.Key, 0, m.Len()),
			Values: make([]types.Value, 0, m.Len()),
		}
		m.Ascend(func(it ordered.Item) bool {
			ts.Keys = append(ts.Keys, it.Key)
			ts.Values = append(ts.Values, it.Value)
			return true
		})
		snap.Tables = append(snap.Tables, ts)
	}
	t.mu.Unlock()

	sort.Slice(snap.Tables, func(i, j int) bool { return snap.Tables[i].Seq < snap.Tables[j].Seq })
	return em.NewEncoder(w).Encode(snap)
}

// Load restores tables saved by Save as fresh structures and returns the
// mapping from saved identifiers to the newly issued ones.
func (t *Tables) Load(r io.Reader) (map[types.GSID]types.GSID, error) {
	var snap snapshot
	if err := cbor.NewDecoder(r).Decode(&snap); err != nil {
		return nil, types.NewError(types.ErrKindFormat, err, "sim: decode snapshot")
	}
	if snap.Version != snapshotVersion {
		return nil, types.NewError(types.ErrKindFormat, nil, "sim: snapshot version %d, want %d", snap.Version, snapshotVersion)
	}

	ids := make(map[types.GSID]types.GSID, len(snap.Tables))
	if err := t.restore(snap.Tables, ids); err != nil {
		// A partial restore is unreachable by the caller; release it.
		for _, id := range ids {
			t.drop(id)
		}
		return nil, err
	}
	return ids, nil
}

func (t *Tables) restore(tables []tableSnapshot, ids map[types.GSID]types.GSID) error {
	for _, ts := range tables {
		domain, err := uuid.FromBytes(ts.Domain)
		if err != nil {
			return types.NewError(types.ErrKindFormat, err, "sim: snapshot domain")
		}
		if len(ts.Keys) != len(ts.Values) {
			return types.NewError(types.ErrKindFormat, nil,
				"sim: table %d has %d keys and %d values", ts.Seq, len(ts.Keys), len(ts.Values))
		}

		id, err := t.create()
		if err != nil {
			return fmt.Errorf("sim: restore table %d: %w", ts.Seq, err)
		}
		ids[types.GSID{Domain: domain, Seq: ts.Seq}] = id

		t.mu.Lock()
		m := t.lookup(id)
		for i := range ts.Keys {
			m.Put(ts.Keys[i], ts.Values[i])
		}
		power := uint32(m.Len())
		t.mu.Unlock()
		if err := t.reg.SetPower(id, power); err != nil {
			return err
		}
	}
	return nil
}
