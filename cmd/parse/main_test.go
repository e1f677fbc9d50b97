package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no files", args: []string{"-bank", "sber"}, want: "no input files"},
		{name: "unknown bank", args: []string{"-bank", "sbr", "x.pdf"}, want: `did you mean "sber"?`},
		{name: "bad format", args: []string{"-bank", "ozon", "-format", "xml", "x.pdf"}, want: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_ReportsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not a statement"), 0o600))

	var stdout, stderr bytes.Buffer
	err := run([]string{"-bank", "tbank", notes}, &stdout, &stderr)

	assert.ErrorIs(t, err, errSomeFailed)
	assert.Contains(t, stderr.String(), "notes.txt:")
	assert.JSONEq(t, "[]", stdout.String())
}

func TestRun_CSVHeaderOnlyOnFailure(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	out := filepath.Join(dir, "out.csv")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-bank", "sber", "-format", "csv", "-out", out, empty}, &stdout, &stderr)
	assert.ErrorIs(t, err, errSomeFailed)

	written, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "date,time,amount,direction,counterparty,purpose,balance,dedupe_key\n", string(written))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("renders into the file", func(t *testing.T) {
		path := filepath.Join(dir, "out.json")
		err := writeFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "[]")
			return err
		})
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("render error wins", func(t *testing.T) {
		cause := errors.New("disk full")
		err := writeFile(filepath.Join(dir, "broken.csv"), func(io.Writer) error { return cause })
		assert.ErrorIs(t, err, cause)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := writeFile(filepath.Join(dir, "absent", "out.csv"), func(io.Writer) error { return nil })
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
