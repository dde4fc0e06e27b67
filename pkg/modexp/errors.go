package modexp

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDomain 模数必须为正
	ErrDomain = errors.New("modexp: modulus must be positive")
	// ErrNegativeExponent 不支持负指数
	ErrNegativeExponent = errors.New("modexp: negative exponent")
)

// AllocationError 表示无法为指数位序列申请资源
type AllocationError struct {
	Bits  int // 指数位长 k
	Limit int // 允许的最大位长
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("modexp: cannot allocate bit sequence for %d-bit exponent (limit %d)", e.Bits, e.Limit)
}
