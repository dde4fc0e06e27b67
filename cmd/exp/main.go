// exp 使用从左到右的二进制方法计算 a**e mod m。
//
//	exp [flags] <base> <exponent> <modulus>
package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"l2r-modexp/pkg/bn"
	"l2r-modexp/pkg/modexp"
)

const usage = "usage: exp base exponent modulus"

// 参数个数不对时的退出码（-1 截断为一个字节）
const exitUsage = 255

var errCheckFailed = errors.New("result does not match math/big")

var (
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "big integer backend (" + strings.Join(bn.Names(), ", ") + ")",
		Value: bn.DefaultBackend,
	}
	maxBitsFlag = &cli.IntFlag{
		Name:  "max-exponent-bits",
		Usage: "refuse exponents longer than this many bits (0 = unlimited)",
		Value: modexp.DefaultMaxExponentBits,
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "debug logging on stderr",
	}
	statsFlag = &cli.BoolFlag{
		Name:  "stats",
		Usage: "print the number of squarings and multiplications",
	}
	checkFlag = &cli.BoolFlag{
		Name:  "check",
		Usage: "verify the result against math/big",
	}
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "exp",
		Usage:     "compute a**e mod m",
		ArgsUsage: "<base> <exponent> <modulus>",
		Flags:     []cli.Flag{backendFlag, maxBitsFlag, verboseFlag, statsFlag, checkFlag},
		Writer:    stdout,
		ErrWriter: stderr,
		Action:    expAction,
		// 退出码由 run 统一处理
		ExitErrHandler:  func(*cli.Context, error) {},
		HideHelpCommand: true,
	}
}

// run 返回进程退出码
func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(args)
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return coder.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return 1
}

func newLogger(ctx *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ctx.App.ErrWriter)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if ctx.Bool(verboseFlag.Name) {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func expAction(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		fmt.Fprintln(ctx.App.Writer, usage)
		return cli.Exit("", exitUsage)
	}
	logger := newLogger(ctx)

	backend, err := bn.Lookup(ctx.String(backendFlag.Name))
	if err != nil {
		return cli.Exit(err, 1)
	}
	log := logger.WithField("backend", backend.Name())

	var ops [3]bn.Int
	for i, s := range ctx.Args().Slice() {
		v, err := backend.ParseDecimal(s)
		if err != nil {
			return cli.Exit(err, 1)
		}
		ops[i] = v
	}
	a, e, m := ops[0], ops[1], ops[2]

	out := ctx.App.Writer
	fmt.Fprintf(out, "a = %s\n", a)
	fmt.Fprintf(out, "e = %s\n", e)
	fmt.Fprintf(out, "m = %s\n", m)

	engine := modexp.NewEngine(&modexp.Config{
		MaxExponentBits: ctx.Int(maxBitsFlag.Name),
		Logger:          log,
	})
	r := backend.New()
	stats, err := engine.Exp(r, a, e, m)
	if err != nil {
		log.WithError(err).Debug("modexp failed")
		return cli.Exit(err, 1)
	}

	if ctx.Bool(checkFlag.Name) {
		if err := check(r, ops); err != nil {
			return cli.Exit(err, 1)
		}
		log.Debug("result verified against math/big")
	}

	fmt.Fprintf(out, "a**e mod m = %s\n", r)
	if ctx.Bool(statsFlag.Name) {
		fmt.Fprintf(out, "squares = %d\n", stats.Squares)
		fmt.Fprintf(out, "multiplies = %d\n", stats.Multiplies)
	}
	return nil
}

// check 用 big.Int.Exp 重新计算一遍
func check(r bn.Int, ops [3]bn.Int) error {
	var vals [3]*big.Int
	for i, v := range ops {
		x, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return errors.Errorf("cannot convert %s", v)
		}
		vals[i] = x
	}
	want := new(big.Int).Exp(vals[0], vals[1], vals[2])
	if want.String() != r.String() {
		return errors.Wrapf(errCheckFailed, "got %s, want %s", r, want)
	}
	return nil
}
