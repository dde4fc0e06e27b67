package bn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Int 是 modexp 依赖的大整数能力：复制、模乘、位长、字节长、大端编码、拷贝。
// 具体的算术实现由 Backend 提供，可以随意替换。
type Int interface {
	// Dup 返回完全独立的副本，不共享底层存储
	Dup() Int
	// Set 把 x 拷贝到接收者中
	Set(x Int) error
	SetUint64(v uint64) Int
	// MulMod 计算 z = x * y mod m，接收者可以与 x、y 是同一个值
	MulMod(x, y, m Int) error
	BitLen() int
	ByteLen() int
	// Bytes 返回最短的大端编码，长度等于 ByteLen()
	Bytes() []byte
	Sign() int
	String() string
}

// Backend 负责创建某一种实现的 Int
type Backend interface {
	Name() string
	New() Int
	ParseDecimal(s string) (Int, error)
	FromBytes(b []byte) (Int, error)
}

var (
	ErrBackendMismatch = errors.New("bn: operands come from different backends")
	ErrOverflow        = errors.New("bn: value does not fit the backend")
	ErrZeroModulus     = errors.New("bn: zero modulus")
	ErrNegative        = errors.New("bn: negative values are not supported")
	ErrUnknownBackend  = errors.New("bn: unknown backend")
)

// ParseError 表示十进制字符串无法解析
type ParseError struct {
	Backend string
	Input   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bn: %s: invalid decimal %q: %v", e.Backend, e.Input, e.Err)
	}
	return fmt.Sprintf("bn: %s: invalid decimal %q", e.Backend, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ================= 注册表 =================

const DefaultBackend = "big"

var backends = map[string]Backend{
	BigBackend.Name():     BigBackend,
	SafenumBackend.Name(): SafenumBackend,
	Uint256Backend.Name(): Uint256Backend,
}

// Lookup 按名字查找 backend，名字大小写不敏感
func Lookup(name string) (Backend, error) {
	b, ok := backends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (have %s)", name, strings.Join(Names(), ", "))
	}
	return b, nil
}

func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Default() Backend {
	return BigBackend
}

// checkDecimal 只接受可选的前导符号加十进制数字，空串视为非法
func checkDecimal(s string) error {
	digits := s
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if digits == "" {
		return errors.New("no digits")
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return errors.Errorf("unexpected character %q", c)
		}
	}
	return nil
}
