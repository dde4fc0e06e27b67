package bn

import (
	"math/big"

	"github.com/pkg/errors"
)

// BigBackend 基于 math/big，是默认实现
var BigBackend Backend = bigBackend{}

type bigBackend struct{}

func (bigBackend) Name() string { return "big" }

func (bigBackend) New() Int { return &BigInt{} }

func (b bigBackend) ParseDecimal(s string) (Int, error) {
	if err := checkDecimal(s); err != nil {
		return nil, &ParseError{Backend: b.Name(), Input: s, Err: err}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &ParseError{Backend: b.Name(), Input: s}
	}
	return &BigInt{v: *v}, nil
}

func (bigBackend) FromBytes(buf []byte) (Int, error) {
	z := &BigInt{}
	z.v.SetBytes(buf)
	return z, nil
}

// BigInt 包装 big.Int，零值即为 0
type BigInt struct {
	v big.Int
}

// NewBigInt 拷贝 x 构造一个 BigInt
func NewBigInt(x *big.Int) *BigInt {
	z := &BigInt{}
	z.v.Set(x)
	return z
}

// Big 返回底层值的副本
func (z *BigInt) Big() *big.Int {
	return new(big.Int).Set(&z.v)
}

func (z *BigInt) Dup() Int {
	return NewBigInt(&z.v)
}

func (z *BigInt) Set(x Int) error {
	xb, ok := x.(*BigInt)
	if !ok {
		return ErrBackendMismatch
	}
	z.v.Set(&xb.v)
	return nil
}

func (z *BigInt) SetUint64(v uint64) Int {
	z.v.SetUint64(v)
	return z
}

// MulMod 先乘后模，结果落在 [0, m)（Mod 采用欧几里得取模）
func (z *BigInt) MulMod(x, y, m Int) error {
	xb, ok1 := x.(*BigInt)
	yb, ok2 := y.(*BigInt)
	mb, ok3 := m.(*BigInt)
	if !ok1 || !ok2 || !ok3 {
		return ErrBackendMismatch
	}
	if mb.v.Sign() == 0 {
		return errors.WithStack(ErrZeroModulus)
	}
	// m 可能与 z 是同一个值，先保存一份
	mod := &mb.v
	if mb == z {
		mod = new(big.Int).Set(&mb.v)
	}
	product := new(big.Int).Mul(&xb.v, &yb.v)
	z.v.Mod(product, mod)
	return nil
}

func (z *BigInt) BitLen() int { return z.v.BitLen() }

func (z *BigInt) ByteLen() int { return (z.v.BitLen() + 7) / 8 }

func (z *BigInt) Bytes() []byte { return z.v.Bytes() }

func (z *BigInt) Sign() int { return z.v.Sign() }

func (z *BigInt) String() string { return z.v.String() }
