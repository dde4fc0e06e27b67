package modexp

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"l2r-modexp/pkg/bn"
)

// 默认最多处理 2^24 位的指数
const DefaultMaxExponentBits = 1 << 24

// ================= 配置 =================

type Config struct {
	// 指数位长上限，超过则返回 AllocationError；<= 0 表示不限制
	MaxExponentBits int

	// 为 nil 时丢弃所有日志
	Logger logrus.FieldLogger
}

func DefaultConfig() *Config {
	return &Config{
		MaxExponentBits: DefaultMaxExponentBits,
	}
}

// Stats 记录一次计算中的平方与乘法次数
type Stats struct {
	Bits       int // k = BitLen(e)
	Squares    int // k - 1
	Multiplies int // e 的汉明重量 - 1
}

// Engine 没有可变状态，构造后可以被多个 goroutine 同时使用
type Engine struct {
	cfg Config
	log logrus.FieldLogger
}

func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	eng := &Engine{cfg: *cfg, log: cfg.Logger}
	if eng.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		eng.log = l
	}
	return eng
}

var defaultEngine = NewEngine(nil)

// ================= 对外接口 =================

// ModExp 用默认配置计算 a^e mod m，返回新的大整数
func ModExp(a, e, m bn.Int) (bn.Int, error) {
	r := a.Dup()
	if _, err := defaultEngine.Exp(r, a, e, m); err != nil {
		return nil, err
	}
	return r, nil
}

// Exp 用默认配置计算 r = a^e mod m，出错时 r 保持不变
func Exp(r, a, e, m bn.Int) error {
	_, err := defaultEngine.Exp(r, a, e, m)
	return err
}

// ModExpBytes 按大端字节输入输出，使用默认 backend
func ModExpBytes(base, exp, mod []byte) ([]byte, error) {
	b := bn.Default()
	var ops [3]bn.Int
	for i, buf := range [][]byte{base, exp, mod} {
		v, err := b.FromBytes(buf)
		if err != nil {
			return nil, err
		}
		ops[i] = v
	}
	r, err := ModExp(ops[0], ops[1], ops[2])
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

// Exp 使用从左到右的二进制方法计算 r = a^e mod m。
// 出错时 r 不会被修改。
func (eng *Engine) Exp(r, a, e, m bn.Int) (Stats, error) {
	var stats Stats

	if m.Sign() <= 0 {
		return stats, errors.Wrapf(ErrDomain, "m = %s", m)
	}
	if e.Sign() < 0 {
		return stats, errors.Wrapf(ErrNegativeExponent, "e = %s", e)
	}

	k := e.BitLen()
	stats.Bits = k
	log := eng.log.WithField("bits", k)

	// e = 0: 结果是 1 mod m（m = 1 时为 0）
	if k == 0 {
		one := a.Dup().SetUint64(1)
		acc := a.Dup()
		if err := acc.MulMod(one, one, m); err != nil {
			return stats, errors.Wrap(err, "modexp: reduce 1 mod m")
		}
		log.Debug("zero exponent")
		return stats, errors.Wrap(r.Set(acc), "modexp: copy result")
	}

	bits, err := ExponentBits(e, eng.cfg.MaxExponentBits)
	if err != nil {
		return stats, err
	}

	// A <- a mod m；e = 1 时循环不执行
	acc := a.Dup()
	one := a.Dup().SetUint64(1)
	if err := acc.MulMod(a, one, m); err != nil {
		return stats, errors.Wrap(err, "modexp: reduce base")
	}

	for i := k - 2; i >= 0; i-- {
		// A <- A^2 mod m
		if err := acc.MulMod(acc, acc, m); err != nil {
			return stats, errors.Wrapf(err, "modexp: square at bit %d", i)
		}
		stats.Squares++

		// b_i = 1 时 A <- A * a mod m
		if bits[k-1-i] == 1 {
			if err := acc.MulMod(acc, a, m); err != nil {
				return stats, errors.Wrapf(err, "modexp: multiply at bit %d", i)
			}
			stats.Multiplies++
		}
	}

	if err := r.Set(acc); err != nil {
		return stats, errors.Wrap(err, "modexp: copy result")
	}
	log.WithFields(logrus.Fields{
		"squares":    stats.Squares,
		"multiplies": stats.Multiplies,
	}).Debug("modexp done")
	return stats, nil
}
