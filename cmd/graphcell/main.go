// graphcell is a small demo driver for the capsule engine: a memoized
// fibonacci walk, a concurrent read/write benchmark, and a DOT dump of a live
// dependency graph.
package main

import (
	"fmt"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/graphcell/graphcell/capsule"
	"github.com/graphcell/graphcell/capsule/sideeffects"
)

var log = logrus.WithField("prefix", "main")

func main() {
	app := &cli.App{
		Name:  "graphcell",
		Usage: "demos for the capsule dependency-graph runtime",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "fib",
				Usage: "compute fibonacci numbers through parameterized capsules",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "n",
						Value: 100,
						Usage: "which fibonacci number to compute",
					},
				},
				Action: fibAction,
			},
			{
				Name:  "bench",
				Usage: "hammer one container with concurrent readers and writers",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "readers",
						Value: 4,
						Usage: "number of reader goroutines",
					},
					&cli.IntFlag{
						Name:  "writers",
						Value: 1,
						Usage: "number of writer goroutines",
					},
					&cli.DurationFlag{
						Name:  "duration",
						Value: time.Second,
						Usage: "how long to run",
					},
				},
				Action: benchAction,
			},
			{
				Name:   "graph",
				Usage:  "print the DOT rendering of a sample capsule graph",
				Action: graphAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

// fibCapsule is the classic parameterized capsule: each index is its own
// instance, built once, and the recursion through the reader wires up the
// dependency chain.
type fibCapsule struct {
	n int
}

// fib returns the capsule computing the n-th fibonacci number.
func fib(n int) capsule.Capsule[*big.Int] {
	return fibCapsule{n: n}
}

func (f fibCapsule) CapsuleKey() any {
	return f.n
}

func (f fibCapsule) Eq(old, cur *big.Int) bool {
	return old.Cmp(cur) == 0
}

func (f fibCapsule) Build(h capsule.CapsuleHandle) *big.Int {
	switch f.n {
	case 0:
		return big.NewInt(0)
	case 1:
		return big.NewInt(1)
	default:
		a := capsule.Get(h.Reader, fib(f.n-1))
		b := capsule.Get(h.Reader, fib(f.n-2))
		return new(big.Int).Add(a, b)
	}
}

func fibAction(ctx *cli.Context) error {
	n := ctx.Int("n")
	if n < 0 {
		return errors.New("n must be non-negative")
	}
	container := capsule.New()
	start := time.Now()
	result := capsule.Read(container, fib(n))
	fmt.Printf("fib(%d) = %s (%s)\n", n, result, time.Since(start))
	return nil
}

// counterAPI is the data of the counter manager capsule: the current count
// plus the setter that increments it, captured for use outside builds.
type counterAPI struct {
	count     uint64
	increment func()
}

var counterManager = capsule.Func(func(h capsule.CapsuleHandle) counterAPI {
	count, rebuild, _ := capsule.Raw(h.Registrar, func() uint64 { return 0 })
	return counterAPI{
		count: *count,
		increment: func() {
			rebuild(func(c *uint64) { *c++ })
		},
	}
})

var counterValue = capsule.Func(func(h capsule.CapsuleHandle) uint64 {
	capsule.Register(h.Registrar, sideeffects.AsListener())
	return capsule.Get(h.Reader, counterManager).count
})

func benchAction(ctx *cli.Context) error {
	readers := ctx.Int("readers")
	writers := ctx.Int("writers")
	duration := ctx.Duration("duration")
	if readers < 0 || writers < 0 {
		return errors.New("readers and writers must be non-negative")
	}
	if readers+writers == 0 {
		return errors.New("nothing to do: zero readers and zero writers")
	}

	container := capsule.New()
	increment := capsule.Read(container, counterManager).increment

	var (
		stop       atomic.Bool
		readCount  atomic.Uint64
		writeCount atomic.Uint64
		wg         sync.WaitGroup
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				capsule.Read(container, counterValue)
				readCount.Add(1)
			}
		}()
	}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				increment()
				writeCount.Add(1)
			}
		}()
	}

	time.Sleep(duration)
	stop.Store(true)
	wg.Wait()

	final := capsule.Read(container, counterValue)
	fmt.Printf("readers=%d writers=%d duration=%s\n", readers, writers, duration)
	fmt.Printf("reads:  %s\n", humanize.Comma(int64(readCount.Load())))
	fmt.Printf("writes: %s (final count %s)\n",
		humanize.Comma(int64(writeCount.Load())), humanize.Comma(int64(final)))
	return nil
}

func graphAction(ctx *cli.Context) error {
	container := capsule.New()
	capsule.Read(container, counterValue)
	capsule.Read(container, fib(6))
	fmt.Println(container.Dot())
	return nil
}
