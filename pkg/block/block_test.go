package block

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Empty(t *testing.T) {
	blocks, err := Split(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestSplit_SingleShortBlock(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 1024)

	blocks, err := Split(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	want := sha256.Sum256(data)
	assert.Equal(t, uint64(0), blocks[0].Offset)
	assert.Equal(t, uint32(len(data)), blocks[0].Size)
	assert.Equal(t, want, blocks[0].Hash)
}

func TestSplit_ExactMultipleOfBlockSize(t *testing.T) {
	data := bytes.Repeat([]byte{0x01}, Size*2)

	blocks, err := Split(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, uint64(0), blocks[0].Offset)
	assert.Equal(t, uint32(Size), blocks[0].Size)
	assert.Equal(t, uint64(Size), blocks[1].Offset)
	assert.Equal(t, uint32(Size), blocks[1].Size)
}

func TestSplit_LastBlockShorterThanSize(t *testing.T) {
	data := bytes.Repeat([]byte{0x02}, Size+100)

	blocks, err := Split(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, uint32(Size), blocks[0].Size)
	assert.Equal(t, uint64(Size), blocks[1].Offset)
	assert.Equal(t, uint32(100), blocks[1].Size)
}

func TestInfo_HashHex(t *testing.T) {
	h := sha256.Sum256([]byte("hello"))
	info := Info{Hash: h}
	assert.Len(t, info.HashHex(), 64)
}

func TestContentHash_DeterministicAndOrderSensitive(t *testing.T) {
	a := Info{Hash: sha256.Sum256([]byte("a"))}
	b := Info{Hash: sha256.Sum256([]byte("b"))}

	h1 := ContentHash([]Info{a, b})
	h2 := ContentHash([]Info{a, b})
	h3 := ContentHash([]Info{b, a})

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestContentHash_EmptyBlockList(t *testing.T) {
	want := sha256.Sum256([]byte(""))
	got := ContentHash(nil)
	assert.Equal(t, hex.EncodeToString(want[:]), got)
}
