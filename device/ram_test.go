package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAMReadWrite(t *testing.T) {
	r := NewRAM(16)
	r.Write(5, 0x99)
	assert.Equal(t, uint8(0x99), r.Read(5))
	assert.Equal(t, uint32(16), r.Size())
}

func TestRAMPowerOnZeroes(t *testing.T) {
	r := NewRAM(4)
	r.Write(0, 0xFF)
	r.PowerOn()
	assert.Equal(t, uint8(0), r.Read(0))
}

func TestRAMDumpAndLoad(t *testing.T) {
	r := NewRAM(8)
	for i := uint32(0); i < 8; i++ {
		r.Write(i, uint8(i*2))
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ramdump")
	require.NoError(t, r.Dump(path))

	loaded, err := LoadRAMDump(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), loaded.Size())
	for i := uint32(0); i < 8; i++ {
		assert.Equal(t, uint8(i*2), loaded.Read(i))
	}
}

func TestRAMLoadIntoRequiresMatchingSize(t *testing.T) {
	r := NewRAM(8)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ramdump")
	require.NoError(t, os.WriteFile(path, make([]byte, 4), 0o644))

	err := r.LoadInto(path)
	assert.Error(t, err)
}

func TestRAMLoadIntoPreservesIdentity(t *testing.T) {
	r := NewRAM(4)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ramdump")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	require.NoError(t, r.LoadInto(path))
	assert.Equal(t, uint8(3), r.Read(2))
}
