package bn

import (
	"bytes"
	"math/big"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ================= 辅助函数 =================

func mustParse(t *testing.T, b Backend, s string) Int {
	t.Helper()
	v, err := b.ParseDecimal(s)
	require.NoError(t, err, "解析 %q 失败", s)
	return v
}

func bigOf(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad literal " + s)
	}
	return v
}

// verifyEncoding 对照 big.Int 检查位长、字节长和大端编码
func verifyEncoding(t *testing.T, v Int, want *big.Int) {
	t.Helper()
	assert.Equal(t, want.BitLen(), v.BitLen(), "BitLen")
	assert.Equal(t, (want.BitLen()+7)/8, v.ByteLen(), "ByteLen")
	assert.True(t, bytes.Equal(want.Bytes(), v.Bytes()), "Bytes: 期望 %x, 得到 %x", want.Bytes(), v.Bytes())
	assert.Len(t, v.Bytes(), v.ByteLen())
	assert.Equal(t, want.String(), v.String())
}

func allBackends() []Backend {
	return []Backend{BigBackend, SafenumBackend, Uint256Backend}
}

// ================= 基本功能测试 =================

func TestEncoding(t *testing.T) {
	values := []string{
		"0",
		"1",
		"255",
		"256",
		"65537",
		"123456789012345678901234567890",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935", // 2^256-1
	}
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			for _, s := range values {
				verifyEncoding(t, mustParse(t, b, s), bigOf(s))
			}
		})
	}
}

func TestMulMod(t *testing.T) {
	cases := []struct {
		x, y, m string
	}{
		{"2", "3", "5"},
		{"0", "7", "11"},
		{"10", "10", "1"},
		{"999999999999", "999999999999", "1000000007"},
		{"123456789012345678901234567890", "123456789012345678901234567890", "999999999999999999989"},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935",
			"115792089237316195423570985008687907853269984665640564039457584007913129639935",
			"115792089237316195423570985008687907853269984665640564039457584007913129639933"},
	}
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			for _, c := range cases {
				x, y, m := mustParse(t, b, c.x), mustParse(t, b, c.y), mustParse(t, b, c.m)
				z := b.New()
				require.NoError(t, z.MulMod(x, y, m))

				want := new(big.Int).Mul(bigOf(c.x), bigOf(c.y))
				want.Mod(want, bigOf(c.m))
				verifyEncoding(t, z, want)
			}
		})
	}
}

func TestMulModAliasing(t *testing.T) {
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			a := mustParse(t, b, "12345")
			m := mustParse(t, b, "1000")

			// A <- A*A mod m
			require.NoError(t, a.MulMod(a, a, m))
			assert.Equal(t, "25", a.String()) // 152399025 mod 1000

			// 接收者同时是模数
			m2 := mustParse(t, b, "7")
			require.NoError(t, m2.MulMod(mustParse(t, b, "3"), mustParse(t, b, "4"), m2))
			assert.Equal(t, "5", m2.String())
		})
	}
}

func TestDupIndependent(t *testing.T) {
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			a := mustParse(t, b, "42")
			d := a.Dup()
			d.SetUint64(7)
			assert.Equal(t, "42", a.String(), "副本修改不应影响原值")
			assert.Equal(t, "7", d.String())

			require.NoError(t, a.Set(d))
			assert.Equal(t, "7", a.String())
			d.SetUint64(9)
			assert.Equal(t, "7", a.String(), "Set 之后不应共享存储")
		})
	}
}

// ================= 错误处理测试 =================

func TestParseErrors(t *testing.T) {
	bad := []string{"", "-", "12a", "0x10", " 1", "1.5"}
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			for _, s := range bad {
				_, err := b.ParseDecimal(s)
				var perr *ParseError
				require.Error(t, err, "%q 应该解析失败", s)
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, s, perr.Input)
				assert.Equal(t, b.Name(), perr.Backend)
			}
		})
	}

	t.Run("负数", func(t *testing.T) {
		v := mustParse(t, BigBackend, "-17")
		assert.Equal(t, -1, v.Sign())

		_, err := SafenumBackend.ParseDecimal("-17")
		assert.True(t, errors.Is(err, ErrNegative))
		_, err = Uint256Backend.ParseDecimal("-17")
		assert.True(t, errors.Is(err, ErrNegative))

		z := mustParse(t, SafenumBackend, "-0")
		assert.Equal(t, 0, z.Sign())
	})

	t.Run("uint256 溢出", func(t *testing.T) {
		_, err := Uint256Backend.ParseDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639936")
		assert.True(t, errors.Is(err, ErrOverflow))

		_, err = Uint256Backend.FromBytes(bytes.Repeat([]byte{0xff}, 33))
		assert.True(t, errors.Is(err, ErrOverflow))

		v, err := Uint256Backend.FromBytes(append(make([]byte, 8), bytes.Repeat([]byte{0xff}, 32)...))
		require.NoError(t, err)
		assert.Equal(t, 256, v.BitLen())
	})
}

func TestMismatchAndZeroModulus(t *testing.T) {
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			z := b.New()
			x := mustParse(t, b, "3")
			err := z.MulMod(x, x, mustParse(t, b, "0"))
			assert.True(t, errors.Is(err, ErrZeroModulus))

			for _, other := range allBackends() {
				if other.Name() == b.Name() {
					continue
				}
				y := mustParse(t, other, "3")
				assert.Equal(t, ErrBackendMismatch, z.MulMod(x, y, x))
				assert.Equal(t, ErrBackendMismatch, z.Set(y))
			}
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"big", "SAFENUM", " uint256 "} {
		b, err := Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, b)
	}
	_, err := Lookup("gmp")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
	assert.Equal(t, []string{"big", "safenum", "uint256"}, Names())
	assert.Equal(t, DefaultBackend, Default().Name())
}

func TestFromBytes(t *testing.T) {
	for _, b := range allBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			v, err := b.FromBytes([]byte{0x00, 0x01, 0x00, 0x01})
			require.NoError(t, err)
			verifyEncoding(t, v, big.NewInt(65537))

			v, err = b.FromBytes(nil)
			require.NoError(t, err)
			assert.Equal(t, 0, v.Sign())
			assert.Equal(t, 0, v.BitLen())
			assert.Empty(t, v.Bytes())
		})
	}
}

func TestSafenumModulusCache(t *testing.T) {
	m := mustParse(t, SafenumBackend, "1000").(*Nat)
	x := mustParse(t, SafenumBackend, "12345")
	z := SafenumBackend.New()

	require.NoError(t, z.MulMod(x, x, m))
	assert.Equal(t, "25", z.String())
	mod := m.modulus.Load()
	require.NotNil(t, mod, "第一次模乘后应缓存 Modulus")

	// 同一个模数重复使用，不再重新构造
	require.NoError(t, z.MulMod(z, x, m))
	assert.Equal(t, "625", z.String()) // 25 * 12345 = 308625
	assert.Same(t, mod, m.modulus.Load())

	t.Run("修改模数后缓存失效", func(t *testing.T) {
		m.SetUint64(7)
		assert.Nil(t, m.modulus.Load())
		require.NoError(t, z.MulMod(x, x, m))
		assert.Equal(t, "2", z.String()) // 12345 ≡ 4 (mod 7)，16 mod 7

		require.NoError(t, m.Set(mustParse(t, SafenumBackend, "11")))
		assert.Nil(t, m.modulus.Load())
		require.NoError(t, z.MulMod(x, x, m))
		assert.Equal(t, "9", z.String()) // 12345 ≡ 3 (mod 11)
	})

	t.Run("接收者是模数本身", func(t *testing.T) {
		m2 := mustParse(t, SafenumBackend, "7").(*Nat)
		require.NoError(t, m2.MulMod(mustParse(t, SafenumBackend, "3"), mustParse(t, SafenumBackend, "4"), m2))
		assert.Equal(t, "5", m2.String())
		assert.Nil(t, m2.modulus.Load())
		require.NoError(t, z.MulMod(mustParse(t, SafenumBackend, "3"), mustParse(t, SafenumBackend, "3"), m2))
		assert.Equal(t, "4", z.String()) // 9 mod 5
	})
}

func TestSafenumSharedModulus(t *testing.T) {
	m := mustParse(t, SafenumBackend, "999999999999999999989")
	x := mustParse(t, SafenumBackend, "123456789012345678901234567890")
	want := new(big.Int).Mul(bigOf("123456789012345678901234567890"), bigOf("123456789012345678901234567890"))
	want.Mod(want, bigOf("999999999999999999989"))

	// 多个 goroutine 共用同一个只读的 m
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			z := SafenumBackend.New()
			assert.NoError(t, z.MulMod(x, x, m))
			assert.Equal(t, want.String(), z.String())
		}()
	}
	wg.Wait()
}
