package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeygenCommand(t *testing.T) {
	tests := []struct {
		name        string
		schema      string
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "split field",
			schema:      "a:20 b:20",
			args:        []string{"a=1", "b=0xfff01"},
			wantContain: []string{"0x000000fff0100001"},
		},
		{
			name:        "truncated schema warns",
			schema:      "a:32 b:32 c:8",
			args:        []string{"a=1"},
			wantContain: []string{"warning", "72 bits"},
		},
		{
			name:    "missing schema",
			args:    []string{"a=1"},
			wantErr: true,
		},
		{
			name:    "bad field",
			schema:  "a:8",
			args:    []string{"a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			keygenSchema = tt.schema
			jsonOut = tt.json

			output, err := captureOutput(t, func() error { return runKeygen(tt.args) })
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestKeygenCommand_JSON(t *testing.T) {
	resetFlags()
	keygenSchema = "a:20 b:20"
	jsonOut = true

	output, err := captureOutput(t, func() error { return runKeygen([]string{"a=1", "b=0xfff01"}) })
	require.NoError(t, err)

	var res keygenResult
	assertJSON(t, output, &res)
	require.Equal(t, []uint32{0xf0100001, 0xff}, res.Words)
	require.Equal(t, uint(40), res.Width)
	require.True(t, res.Fits)
}
