package cidr

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"

	"go4.org/netipx"
)

var ErrInvalidRange = errors.New("cidr: invalid range")

// InvalidRangeError is returned when a range starts after it ends.
type InvalidRangeError struct {
	Start uint32
	End   uint32
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("cidr: invalid range %s-%s: start is greater than end", FormatUint32(e.Start), FormatUint32(e.End))
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Range is an inclusive IPv4 address range.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", FormatUint32(r.Start), FormatUint32(r.End))
}

func (r Range) Decompose() ([]Block, error) {
	return Decompose(r.Start, r.End)
}

// Block is an aligned IPv4 network: Base has no bits set below the prefix.
type Block struct {
	Base uint32
	Bits uint8
}

func BlockFromPrefix(p netip.Prefix) (Block, error) {
	if !p.IsValid() || !p.Addr().Unmap().Is4() {
		return Block{}, fmt.Errorf("cidr: not an ipv4 prefix: %s", p)
	}
	p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()).Masked()
	return Block{Base: Uint32FromAddr(p.Addr()), Bits: uint8(p.Bits())}, nil
}

func (b Block) Size() uint64 {
	return 1 << (32 - uint(b.Bits))
}

func (b Block) First() uint32 {
	return b.Base
}

func (b Block) Last() uint32 {
	return uint32(uint64(b.Base) + b.Size() - 1)
}

func (b Block) Aligned() bool {
	return uint64(b.Base)&(b.Size()-1) == 0
}

func (b Block) Prefix() netip.Prefix {
	return netip.PrefixFrom(AddrFromUint32(b.Base), int(b.Bits))
}

func (b Block) String() string {
	return FormatUint32(b.Base) + "/" + strconv.Itoa(int(b.Bits))
}

// Decompose returns the smallest ordered set of aligned blocks covering
// exactly [start, end]. The block size at each cursor position is grown one
// bit at a time while the cursor stays aligned and the block stays in range.
func Decompose(start, end uint32) ([]Block, error) {
	if start > end {
		return nil, &InvalidRangeError{Start: start, End: end}
	}
	var blocks []Block
	// 64-bit cursor: the last block may end at 2^32-1
	network, last := uint64(start), uint64(end)
	for network <= last {
		x := uint(0)
		for x < 32 && network&(1<<x) == 0 && network+(1<<(x+1))-1 <= last {
			x++
		}
		blocks = append(blocks, Block{Base: uint32(network), Bits: uint8(32 - x)})
		network += 1 << x
	}
	return blocks, nil
}

// DecomposeAddrs is Decompose for netip addresses of either family.
func DecomposeAddrs(from, to netip.Addr) ([]netip.Prefix, error) {
	from, to = from.Unmap(), to.Unmap()
	if !from.IsValid() || !to.IsValid() || from.BitLen() != to.BitLen() || to.Less(from) {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidRange, from, to)
	}
	if from.Is4() {
		blocks, err := Decompose(Uint32FromAddr(from), Uint32FromAddr(to))
		if err != nil {
			return nil, err
		}
		prefixes := make([]netip.Prefix, 0, len(blocks))
		for _, b := range blocks {
			prefixes = append(prefixes, b.Prefix())
		}
		return prefixes, nil
	}
	return netipx.IPRangeFrom(from, to).Prefixes(), nil
}

func AddrFromUint32(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

func Uint32FromAddr(addr netip.Addr) uint32 {
	a := addr.Unmap().As4()
	return uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
}

func FormatUint32(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24, v>>16&0xff, v>>8&0xff, v&0xff)
}

// ParseUint32 accepts dotted-decimal ("1.2.3.4") or integer ("16909060") form.
func ParseUint32(s string) (uint32, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("cidr: parse address %s fail: %w", s, err)
	}
	if !addr.Unmap().Is4() {
		return 0, fmt.Errorf("cidr: not an ipv4 address: %s", s)
	}
	return Uint32FromAddr(addr), nil
}
