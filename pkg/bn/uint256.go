package bn

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Uint256Backend 基于定长 256 位整数，超过 256 位的值一律拒绝
var Uint256Backend Backend = uint256Backend{}

type uint256Backend struct{}

func (uint256Backend) Name() string { return "uint256" }

func (uint256Backend) New() Int { return &Word256{} }

func (b uint256Backend) ParseDecimal(s string) (Int, error) {
	if err := checkDecimal(s); err != nil {
		return nil, &ParseError{Backend: b.Name(), Input: s, Err: err}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &ParseError{Backend: b.Name(), Input: s}
	}
	if v.Sign() < 0 {
		return nil, &ParseError{Backend: b.Name(), Input: s, Err: ErrNegative}
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, &ParseError{Backend: b.Name(), Input: s, Err: ErrOverflow}
	}
	return &Word256{u: *u}, nil
}

func (b uint256Backend) FromBytes(buf []byte) (Int, error) {
	// 允许前导零，只看有效部分
	trimmed := []byte(strings.TrimLeft(string(buf), "\x00"))
	if len(trimmed) > 32 {
		return nil, errors.Wrapf(ErrOverflow, "%s: %d bytes", b.Name(), len(trimmed))
	}
	z := &Word256{}
	z.u.SetBytes(trimmed)
	return z, nil
}

// Word256 包装 uint256.Int，零值即为 0
type Word256 struct {
	u uint256.Int
}

func (z *Word256) Dup() Int {
	return &Word256{u: z.u}
}

func (z *Word256) Set(x Int) error {
	xw, ok := x.(*Word256)
	if !ok {
		return ErrBackendMismatch
	}
	z.u.Set(&xw.u)
	return nil
}

func (z *Word256) SetUint64(v uint64) Int {
	z.u.SetUint64(v)
	return z
}

// MulMod 使用 512 位中间结果，不会溢出
func (z *Word256) MulMod(x, y, m Int) error {
	xw, ok1 := x.(*Word256)
	yw, ok2 := y.(*Word256)
	mw, ok3 := m.(*Word256)
	if !ok1 || !ok2 || !ok3 {
		return ErrBackendMismatch
	}
	if mw.u.IsZero() {
		return errors.WithStack(ErrZeroModulus)
	}
	// 拷贝一份，避免接收者与参数别名
	xv, yv, mv := xw.u, yw.u, mw.u
	z.u.MulMod(&xv, &yv, &mv)
	return nil
}

func (z *Word256) BitLen() int { return z.u.BitLen() }

func (z *Word256) ByteLen() int { return z.u.ByteLen() }

func (z *Word256) Bytes() []byte { return z.u.Bytes() }

func (z *Word256) Sign() int {
	if z.u.IsZero() {
		return 0
	}
	return 1
}

func (z *Word256) String() string { return z.u.ToBig().String() }
