package fermat

import (
	"math/big"

	"github.com/pkg/errors"

	"l2r-modexp/pkg/bn"
	"l2r-modexp/pkg/modexp"
)

// Fermat 测试：b^(n-1) ≡ 1 (mod n) ?
// 不通过 => 一定是合数；通过 => 可能是素数（Carmichael 数对所有互素的底都会通过）。

// ================= 公共类型 & 配置 =================

type Config struct {
	// 依次检查的底数，每个都必须 >= 2
	Bases []uint64

	// 为 nil 时使用 modexp.DefaultConfig()
	Engine *modexp.Config
}

func DefaultConfig() *Config {
	return &Config{
		Bases: []uint64{2},
	}
}

var (
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)

	errBadBase = errors.New("fermat: base must be at least 2")
)

// ================= 入口 =================

// IsProbablePrime 对 n 依次执行各个底数的 Fermat 测试
func IsProbablePrime(n *big.Int, cfg *Config) (bool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, base := range cfg.Bases {
		if base < 2 {
			return false, errors.Wrapf(errBadBase, "got %d", base)
		}
	}

	if n.Cmp(bigTwo) < 0 {
		return false, nil
	}
	if n.Cmp(bigTwo) == 0 || n.Cmp(bigThree) == 0 {
		return true, nil
	}
	if n.Bit(0) == 0 { // 偶数
		return false, nil
	}

	t := &tester{
		engine: modexp.NewEngine(cfg.Engine),
		n:      bn.NewBigInt(n),
		exp:    bn.NewBigInt(new(big.Int).Sub(n, bigOne)), // n-1
	}

	filters := make([]filter, 0, len(cfg.Bases))
	residue := new(big.Int)
	for _, base := range cfg.Bases {
		// b ≡ 0 (mod n) 时 b^(n-1) ≡ 0，这样的底数不能说明任何问题，跳过
		if residue.Mod(new(big.Int).SetUint64(base), n).Sign() == 0 {
			continue
		}
		filters = append(filters, t.baseFilter(base))
	}
	return runFilters(filters)
}

// ================= 内部实现 =================

type tester struct {
	engine *modexp.Engine
	n      *bn.BigInt
	exp    *bn.BigInt
}

type filter func() (bool, error)

// 按顺序执行 filters，有一个不过就返回 false
func runFilters(filters []filter) (bool, error) {
	for _, f := range filters {
		ok, err := f()
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (t *tester) baseFilter(base uint64) filter {
	return func() (bool, error) {
		b := new(bn.BigInt)
		b.SetUint64(base)
		r := new(bn.BigInt)
		if _, err := t.engine.Exp(r, b, t.exp, t.n); err != nil {
			return false, errors.Wrapf(err, "fermat: base %d", base)
		}
		return r.Big().Cmp(bigOne) == 0, nil
	}
}
