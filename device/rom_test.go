package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROMLoadsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rom")
	require.NoError(t, os.WriteFile(path, []byte{0xA9, 0x00, 0x60}, 0o644))

	r, err := NewROMFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.Size())
	assert.Equal(t, uint8(0xA9), r.Read(0))
}

func TestROMWritesAreDroppedButCounted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rom")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x00}, 0o644))

	r, err := NewROMFromFile(path)
	require.NoError(t, err)

	r.Write(0, 0xFF)
	assert.Equal(t, uint8(0x00), r.Read(0), "ROM contents must not change on write")
	assert.Equal(t, uint64(1), r.BadWrites())
}

func TestROMReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rom")
	require.NoError(t, os.WriteFile(path, []byte{0x11, 0x22}, 0o644))

	r, err := NewROMFromFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte{0x33, 0x44}, 0o644))
	require.NoError(t, r.Reload())
	assert.Equal(t, uint8(0x33), r.Read(0))
}

func TestROMReloadRejectsSizeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rom")
	require.NoError(t, os.WriteFile(path, []byte{0x11, 0x22}, 0o644))

	r, err := NewROMFromFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte{0x33}, 0o644))
	err = r.Reload()
	assert.Error(t, err)
	assert.Equal(t, uint8(0x11), r.Read(0), "failed reload must leave prior image intact")
}
