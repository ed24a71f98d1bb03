package cidr

import (
	"errors"
	"math"
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go4.org/netipx"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name     string
		start    uint32
		end      uint32
		expected []Block
	}{
		{"single address", 10, 10, []Block{{10, 32}}},
		{"aligned /30", 0, 3, []Block{{0, 30}}},
		{"unaligned start", 1, 3, []Block{{1, 32}, {2, 31}}},
		{"full space", 0, math.MaxUint32, []Block{{0, 0}}},
		{"last address", math.MaxUint32, math.MaxUint32, []Block{{math.MaxUint32, 32}}},
		{"upper half", 1 << 31, math.MaxUint32, []Block{{1 << 31, 1}}},
		{"unaligned end", 0, 4, []Block{{0, 30}, {4, 32}}},
		{"class c", 0x01020300, 0x010203ff, []Block{{0x01020300, 24}}},
		{"odd span", 5, 12, []Block{{5, 32}, {6, 31}, {8, 30}, {12, 32}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Decompose(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, blocks)
		})
	}
}

func TestDecomposeInvalidRange(t *testing.T) {
	blocks, err := Decompose(11, 10)
	require.Error(t, err)
	assert.Nil(t, blocks)
	assert.True(t, errors.Is(err, ErrInvalidRange))

	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, uint32(11), rangeErr.Start)
	assert.Equal(t, uint32(10), rangeErr.End)
	assert.Contains(t, err.Error(), "0.0.0.11-0.0.0.10")
}

func checkCover(t *testing.T, start, end uint32, blocks []Block) {
	t.Helper()
	require.NotEmpty(t, blocks)
	next := uint64(start)
	for i, b := range blocks {
		require.True(t, b.Aligned(), "block %s is not aligned", b)
		require.Equal(t, next, uint64(b.First()), "gap or overlap before block %d (%s)", i, b)
		next = uint64(b.Last()) + 1
		if i > 0 {
			prev := blocks[i-1]
			mergeable := prev.Bits == b.Bits && prev.Bits > 0 && uint64(prev.Base)&(prev.Size()*2-1) == 0
			require.False(t, mergeable, "blocks %s and %s can be merged", prev, b)
		}
	}
	require.Equal(t, uint64(end)+1, next)
}

func TestDecomposeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a, b := r.Uint32(), r.Uint32()
		if i%3 == 0 {
			// short ranges exercise the unaligned edges
			b = a + uint32(r.Intn(1024))
			if b < a {
				b = math.MaxUint32
			}
		}
		if a > b {
			a, b = b, a
		}
		blocks, err := Decompose(a, b)
		require.NoError(t, err)
		checkCover(t, a, b, blocks)

		again, err := Decompose(a, b)
		require.NoError(t, err)
		assert.Equal(t, blocks, again)

		expected := netipx.IPRangeFrom(AddrFromUint32(a), AddrFromUint32(b)).Prefixes()
		require.Len(t, blocks, len(expected))
		for j := range blocks {
			assert.Equal(t, expected[j], blocks[j].Prefix())
		}
	}
}

func TestDecomposeAddrs(t *testing.T) {
	prefixes, err := DecomposeAddrs(netip.MustParseAddr("1.0.0.1"), netip.MustParseAddr("1.0.0.3"))
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("1.0.0.1/32"),
		netip.MustParsePrefix("1.0.0.2/31"),
	}, prefixes)

	prefixes, err = DecomposeAddrs(netip.MustParseAddr("2001:db8::"), netip.MustParseAddr("2001:db8::ffff"))
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("2001:db8::/112")}, prefixes)

	_, err = DecomposeAddrs(netip.MustParseAddr("10.0.0.2"), netip.MustParseAddr("10.0.0.1"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = DecomposeAddrs(netip.MustParseAddr("10.0.0.1"), netip.MustParseAddr("2001:db8::1"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBlock(t *testing.T) {
	b := Block{Base: 0x01020300, Bits: 24}
	assert.Equal(t, "1.2.3.0/24", b.String())
	assert.Equal(t, netip.MustParsePrefix("1.2.3.0/24"), b.Prefix())
	assert.Equal(t, uint64(256), b.Size())
	assert.Equal(t, uint32(0x010203ff), b.Last())

	all := Block{Base: 0, Bits: 0}
	assert.Equal(t, "0.0.0.0/0", all.String())
	assert.Equal(t, uint32(math.MaxUint32), all.Last())

	got, err := BlockFromPrefix(netip.MustParsePrefix("1.2.3.4/24"))
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = BlockFromPrefix(netip.MustParsePrefix("2001:db8::/32"))
	assert.Error(t, err)
}

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "1.0.0.0", FormatUint32(16777216))
	assert.Equal(t, "255.255.255.255", FormatUint32(math.MaxUint32))
	assert.Equal(t, "0.0.0.0", FormatUint32(0))

	v, err := ParseUint32("16777216")
	require.NoError(t, err)
	assert.Equal(t, uint32(16777216), v)

	v, err = ParseUint32("1.0.0.0")
	require.NoError(t, err)
	assert.Equal(t, uint32(16777216), v)

	_, err = ParseUint32("2001:db8::1")
	assert.Error(t, err)
	_, err = ParseUint32("not-an-address")
	assert.Error(t, err)

	assert.Equal(t, uint32(0xc0a80101), Uint32FromAddr(netip.MustParseAddr("192.168.1.1")))
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), AddrFromUint32(0xc0a80101))
}
