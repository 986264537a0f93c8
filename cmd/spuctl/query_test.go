package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeSnapshot(t *testing.T) string {
	t.Helper()
	resetFlags()
	quiet = true
	loadSnapshot = filepath.Join(t.TempDir(), "pairs.cbor")
	_, err := captureOutput(t, func() error {
		return runLoad(context.Background(), []string{writeBatch(t, sampleBatch)})
	})
	require.NoError(t, err)
	snap := loadSnapshot
	resetFlags()
	return snap
}

func TestQueryCommand(t *testing.T) {
	snap := makeSnapshot(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{"min", []string{snap, "min"}, false, []string{"0x0000000000000001 => 0x000000000000000b"}},
		{"max", []string{snap, "MAX"}, false, []string{"0x0000000000000009"}},
		{"search hit", []string{snap, "search", "4"}, false, []string{"=> 0x0000000000000028"}},
		{"search miss", []string{snap, "search", "7"}, false, []string{"no result"}},
		{"next", []string{snap, "next", "5"}, false, []string{"0x0000000000000009 =>"}},
		{"nsm", []string{snap, "nsm", "0x8"}, false, []string{"0x0000000000000005 =>"}},
		{"ngr", []string{snap, "ngr", "9"}, false, []string{"no result"}},
		{"missing key", []string{snap, "search"}, true, nil},
		{"bad op", []string{snap, "sort"}, true, nil},
		{"bad snapshot", []string{filepath.Join(t.TempDir(), "nope"), "min"}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			output, err := captureOutput(t, func() error { return runQuery(context.Background(), tt.args) })
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestQueryCommand_OptionsAndJSON(t *testing.T) {
	snap := makeSnapshot(t)

	resetFlags()
	jsonOut = true
	queryFlags = "pq"
	output, err := captureOutput(t, func() error { return runQuery(context.Background(), []string{snap, "prev", "3"}) })
	require.NoError(t, err)
	var res queryResult
	assertJSON(t, output, &res)
	require.Equal(t, "OK", res.Status)
	require.Equal(t, "0x0000000000000001", res.Key)

	resetFlags()
	queryFlags = "x"
	_, err = captureOutput(t, func() error { return runQuery(context.Background(), []string{snap, "min"}) })
	require.ErrorContains(t, err, "unknown flag")

	resetFlags()
	queryTable = 3
	_, err = captureOutput(t, func() error { return runQuery(context.Background(), []string{snap, "min"}) })
	require.ErrorContains(t, err, "out of range")

	resetFlags()
	querySchema = "a:8"
	_, err = captureOutput(t, func() error { return runQuery(context.Background(), []string{snap, "search", "a=4"}) })
	require.NoError(t, err)
}

func TestInfoCommand(t *testing.T) {
	snap := makeSnapshot(t)

	output, err := captureOutput(t, func() error { return runInfo(context.Background(), []string{snap}) })
	require.NoError(t, err)
	assertContains(t, output, []string{"Structures: 1", "power=5", "min=0x0000000000000001"})

	resetFlags()
	jsonOut = true
	output, err = captureOutput(t, func() error { return runInfo(context.Background(), []string{snap}) })
	require.NoError(t, err)
	var tables []tableInfo
	assertJSON(t, output, &tables)
	require.Len(t, tables, 1)
	require.Equal(t, uint32(5), tables[0].Power)
	require.Equal(t, "0x0000000000000009", tables[0].Max.Key)
}
