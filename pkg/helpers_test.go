package pkg

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/hansbonini/psutools/pkg/common"
)

const sourceRoot = "/save"

var fixedTime = time.Date(2024, time.October, 10, 10, 30, 0, 0, time.UTC)

// newSource builds a read-only source folder the way the CLI exposes one
func newSource(t *testing.T, files map[string]string, dirs ...string) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(sourceRoot, 0o755))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(mem, filepath.Join(sourceRoot, name), []byte(content), 0o644))
	}
	for _, dir := range dirs {
		require.NoError(t, mem.MkdirAll(filepath.Join(sourceRoot, dir), 0o755))
	}
	return afero.NewReadOnlyFs(afero.NewBasePathFs(mem, sourceRoot))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	common.SetLogOutput(&buf)
	t.Cleanup(func() { common.SetLogOutput(nil) })
	return &buf
}

func newTestPacker(now time.Time) *Packer {
	p := NewPacker()
	p.now = func() time.Time { return now }
	return p
}

func uint16Ptr(v uint16) *uint16 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
