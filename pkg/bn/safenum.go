package bn

import (
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/cronokirby/safenum"
	"github.com/pkg/errors"
)

// SafenumBackend 基于 safenum.Nat，只能表示非负整数
var SafenumBackend Backend = safenumBackend{}

type safenumBackend struct{}

func (safenumBackend) Name() string { return "safenum" }

func (safenumBackend) New() Int { return &Nat{} }

func (b safenumBackend) ParseDecimal(s string) (Int, error) {
	if err := checkDecimal(s); err != nil {
		return nil, &ParseError{Backend: b.Name(), Input: s, Err: err}
	}
	if strings.HasPrefix(s, "-") {
		// "-0" 仍然是 0
		if strings.Trim(s[1:], "0") != "" {
			return nil, &ParseError{Backend: b.Name(), Input: s, Err: ErrNegative}
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &ParseError{Backend: b.Name(), Input: s}
	}
	return NewNat(v), nil
}

func (safenumBackend) FromBytes(buf []byte) (Int, error) {
	z := &Nat{}
	z.n.SetBytes(buf)
	return z, nil
}

// Nat 包装 safenum.Nat，零值即为 0
type Nat struct {
	n safenum.Nat

	// 以自身为模数时构造出的 Modulus，任何修改 n 的操作都要清空。
	// 同一个 m 可能被多个 goroutine 同时读取，所以用原子指针
	modulus atomic.Pointer[safenum.Modulus]
}

// asModulus 返回缓存的 Modulus，没有则构造一个
func (z *Nat) asModulus() *safenum.Modulus {
	if mod := z.modulus.Load(); mod != nil {
		return mod
	}
	mod := safenum.ModulusFromNat(new(safenum.Nat).SetNat(&z.n))
	z.modulus.Store(mod)
	return mod
}

// NewNat 用非负的 x 构造 Nat
func NewNat(x *big.Int) *Nat {
	z := &Nat{}
	z.n.SetBig(x, x.BitLen())
	return z
}

func (z *Nat) Dup() Int {
	d := &Nat{}
	d.n.SetNat(&z.n)
	return d
}

func (z *Nat) Set(x Int) error {
	xn, ok := x.(*Nat)
	if !ok {
		return ErrBackendMismatch
	}
	z.n.SetNat(&xn.n)
	z.modulus.Store(nil)
	return nil
}

func (z *Nat) SetUint64(v uint64) Int {
	z.n.SetUint64(v)
	z.modulus.Store(nil)
	return z
}

// MulMod 复用 m 上缓存的 safenum.Modulus，x、y 先约简到 [0, m)
func (z *Nat) MulMod(x, y, m Int) error {
	xn, ok1 := x.(*Nat)
	yn, ok2 := y.(*Nat)
	mn, ok3 := m.(*Nat)
	if !ok1 || !ok2 || !ok3 {
		return ErrBackendMismatch
	}
	if mn.n.EqZero() == 1 {
		return errors.WithStack(ErrZeroModulus)
	}
	mod := mn.asModulus()
	xr := new(safenum.Nat).Mod(&xn.n, mod)
	yr := new(safenum.Nat).Mod(&yn.n, mod)
	z.n.ModMul(xr, yr, mod)
	z.modulus.Store(nil)
	return nil
}

func (z *Nat) BitLen() int { return z.n.TrueLen() }

func (z *Nat) ByteLen() int { return (z.n.TrueLen() + 7) / 8 }

// Bytes 去掉 safenum 按容量补齐的前导零
func (z *Nat) Bytes() []byte { return z.n.Big().Bytes() }

func (z *Nat) Sign() int {
	if z.n.EqZero() == 1 {
		return 0
	}
	return 1
}

func (z *Nat) String() string { return z.n.Big().String() }
