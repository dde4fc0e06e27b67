package modexp

import (
	"github.com/pkg/errors"

	"l2r-modexp/pkg/bn"
)

// ExponentBits 把 e 写成 (b_{k-1} ... b_0)，返回的切片按最高位在前排列，长度 k = BitLen(e)。
// 大端字节共 8*kb 位，最高字节里多出来的 gap = 8*kb - k 个前导零被跳过。
// limit > 0 时，k 超过 limit 返回 AllocationError。
func ExponentBits(e bn.Int, limit int) ([]uint8, error) {
	k := e.BitLen()
	if k == 0 {
		return nil, nil
	}
	if limit > 0 && k > limit {
		return nil, &AllocationError{Bits: k, Limit: limit}
	}

	buf := e.Bytes()
	kb := len(buf)
	if kb != e.ByteLen() || 8*kb < k {
		return nil, errors.Errorf("modexp: inconsistent encoding: %d bytes for %d bits", kb, k)
	}
	gap := 8*kb - k

	bits := make([]uint8, k)
	for i := gap; i < 8*kb; i++ {
		bits[i-gap] = (buf[i/8] >> (7 - i%8)) & 0x01
	}
	return bits, nil
}
