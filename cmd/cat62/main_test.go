package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlotsJSON = `{
  "plots": [
    {
      "I062/105": {"lat": 28.6139, "lon": 77.2090},
      "I062/136": {"measured_flight_level": 100.0},
      "I062/185": {"vx": 50.0, "vy": 100.0},
      "I062/220": {"rocd": 500.0},
      "time_of_track": "2026-02-21T09:48:00Z"
    }
  ]
}`

func TestEncodeCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plots.json")
	output := filepath.Join(dir, "tracks.bin")
	require.NoError(t, os.WriteFile(input, []byte(testPlotsJSON), 0o644))

	cmd := newEncodeCmd()
	cmd.SetArgs([]string{input, "-o", output})
	require.NoError(t, cmd.Execute())

	block, err := os.ReadFile(output)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(block), 3)
	assert.Equal(t, byte(0x3E), block[0])
}

func TestEncodeCommandInvalidInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plots.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"plots": []}`), 0o644))

	cmd := newEncodeCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{input, "-o", filepath.Join(dir, "tracks.bin")})
	assert.Error(t, cmd.Execute())
}

func TestDecodeCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plots.json")
	binary := filepath.Join(dir, "tracks.bin")
	require.NoError(t, os.WriteFile(input, []byte(testPlotsJSON), 0o644))

	encode := newEncodeCmd()
	encode.SetArgs([]string{input, "-o", binary})
	require.NoError(t, encode.Execute())

	// The decode command writes JSON to stdout; capture it.
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	decode := newDecodeCmd()
	decode.SetArgs([]string{binary, "--reference-date", "2026-02-21"})
	execErr := decode.Execute()

	require.NoError(t, w.Close())
	os.Stdout = oldStdout
	require.NoError(t, execErr)

	var captured bytes.Buffer
	_, err = captured.ReadFrom(r)
	require.NoError(t, err)

	var resp struct {
		Count   int `json:"count"`
		Records []struct {
			TrackNumber    *int   `json:"track_number"`
			TimeOfTrackISO string `json:"time_of_track_iso"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(captured.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, *resp.Records[0].TrackNumber)
	assert.Equal(t, "2026-02-21T09:48:00Z", resp.Records[0].TimeOfTrackISO)
}

func TestDecodeCommandMissingFile(t *testing.T) {
	cmd := newDecodeCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.bin")})
	assert.Error(t, cmd.Execute())
}
