package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/native-host/buffer"
	"github.com/wippyai/native-host/clock"
	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/host"
	"github.com/wippyai/native-host/mathx"
	"github.com/wippyai/native-host/strutil"
	"github.com/wippyai/native-host/sysinfo"
)

// Config is read from the environment before flags are applied.
type Config struct {
	LogLevel    string `env:"NATIVE_HOST_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"NATIVE_HOST_LOG_FORMAT" envDefault:"console"`
	DemoWorkers int    `env:"NATIVE_HOST_DEMO_WORKERS" envDefault:"8"`
}

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to guest wasm module")
		funcName    = flag.String("func", "_start", "Guest function to call")
		demo        = flag.Bool("demo", false, "Run the built-in subsystem demo and exit")
		info        = flag.Bool("info", false, "Print system information and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch {
	case *info:
		printInfo()
	case *demo:
		if err := runDemo(cfg, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *interactive:
		if err := runInteractive(log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *wasmFile != "":
		if err := runGuest(*wasmFile, *funcName, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: native-host -wasm <file.wasm> [-func name]")
		fmt.Fprintln(os.Stderr, "       native-host -demo")
		fmt.Fprintln(os.Stderr, "       native-host -info")
		fmt.Fprintln(os.Stderr, "       native-host -i  (interactive mode)")
		os.Exit(1)
	}
}

func newLogger(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	if cfg.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}

// newHost assembles the subsystems every mode shares.
func newHost(log *zap.Logger) *host.Host {
	alloc := &handle.Allocator{}
	return host.New(
		concurrency.New(concurrency.WithAllocator(alloc), concurrency.WithLogger(log)),
		buffer.NewPool(alloc, log.Named("buffer")),
		clock.New(),
		host.WithLogger(log.Named("host")),
	)
}

func printInfo() {
	cpu := sysinfo.CPU()
	sys := sysinfo.System()

	fmt.Printf("OS:        %s/%s\n", sys.OS, sys.Arch)
	if sys.Kernel != "" {
		fmt.Printf("Kernel:    %s\n", sys.Kernel)
	}
	fmt.Printf("Hostname:  %s\n", sys.Hostname)
	fmt.Printf("PID:       %d\n", sys.PID)
	fmt.Printf("Page size: %d\n", sys.PageSize)
	fmt.Printf("Go:        %s\n", sys.GoVersion)
	fmt.Printf("Cores:     %d\n", cpu.Cores)
	if cpu.Model != "" {
		fmt.Printf("CPU:       %s\n", cpu.Model)
	}
	if cpu.SpeedMHz != 0 {
		fmt.Printf("Clock:     %.0f MHz\n", cpu.SpeedMHz)
	}
}

func runGuest(wasmFile, funcName string, log *zap.Logger) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	h := newHost(log)
	defer h.Sync.Close()
	defer h.Memory.Close()
	if err := h.Instantiate(ctx, r); err != nil {
		return fmt.Errorf("register host: %w", err)
	}

	mod, err := r.Instantiate(ctx, data)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	fmt.Printf("Module: %s\n", wasmFile)
	fmt.Printf("Exports:\n")
	for name := range mod.ExportedFunctionDefinitions() {
		fmt.Printf("  %s\n", name)
	}

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return fmt.Errorf("guest has no export %q", funcName)
	}

	fmt.Printf("\nCalling %s()...\n", funcName)
	results, err := fn.Call(ctx)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	if len(results) > 0 {
		fmt.Printf("Result: %v\n", results)
	}
	return nil
}

// runDemo exercises every subsystem from the embedder side and prints
// a short transcript.
func runDemo(cfg Config, log *zap.Logger) error {
	h := newHost(log)
	defer h.Sync.Close()
	defer h.Memory.Close()

	fmt.Println("== threads and mutexes ==")
	mu, err := h.Sync.Mutexes().Create(false)
	if err != nil {
		return err
	}
	counter := 0
	workers := make([]handle.Handle, 0, cfg.DemoWorkers)
	for i := 0; i < cfg.DemoWorkers; i++ {
		th, err := h.Sync.Threads().Spawn(func() int32 {
			for j := 0; j < 1000; j++ {
				if _, err := h.Sync.Mutexes().Lock(mu, concurrency.Blocking); err != nil {
					return 1
				}
				counter++
				if err := h.Sync.Mutexes().Unlock(mu); err != nil {
					return 1
				}
			}
			return 0
		})
		if err != nil {
			return err
		}
		workers = append(workers, th)
	}
	for _, th := range workers {
		if _, err := h.Sync.Threads().Join(th); err != nil {
			return err
		}
	}
	fmt.Printf("%d workers incremented the counter to %d\n", cfg.DemoWorkers, counter)
	if err := h.Sync.Mutexes().Destroy(mu); err != nil {
		return err
	}

	fmt.Println("\n== semaphore ==")
	sem, err := h.Sync.Semaphores().Create(2, 5)
	if err != nil {
		return err
	}
	if _, err := h.Sync.Semaphores().Wait(sem, concurrency.Blocking); err != nil {
		return err
	}
	prev, err := h.Sync.Semaphores().Signal(sem, 3)
	if err != nil {
		return err
	}
	fmt.Printf("wait then signal(3): previous count %d\n", prev)
	if err := h.Sync.Semaphores().Destroy(sem); err != nil {
		return err
	}

	fmt.Println("\n== buffers ==")
	buf, err := h.Memory.Allocate(256)
	if err != nil {
		return err
	}
	if err := h.Memory.Set(buf, 0x5A, 256); err != nil {
		return err
	}
	stats := h.Memory.Usage()
	fmt.Printf("allocated %d bytes, live %d, peak %d\n", 256, stats.LiveBytes, stats.PeakBytes)
	if err := h.Memory.Free(buf); err != nil {
		return err
	}

	fmt.Println("\n== math and strings ==")
	fmt.Printf("invsqrt(4) = %.4f\n", mathx.FastInvSqrt(4))
	spectrum := mathx.FFT([]complex128{1, 0, 0, 0})
	fmt.Printf("fft of impulse has %d flat bins\n", len(spectrum))
	hash, err := strutil.Hash("native-host", strutil.Murmur3)
	if err != nil {
		return err
	}
	fmt.Printf("murmur3(\"native-host\") = %#x\n", hash)
	fmt.Printf("search: %q in %q at %d\n", "host", "native-host", strutil.Search("native-host", "host", true))

	fmt.Println("\n== timing ==")
	start := h.Clock.Now()
	clock.Sleep(10)
	fmt.Printf("slept 10ms, monotonic delta %s\n", h.Clock.Since(start).Round(time.Millisecond))
	if cpu, err := clock.ProcessCPUTime(); err == nil {
		fmt.Printf("process cpu time %s\n", cpu.Round(time.Millisecond))
	}

	issued := h.Sync.Stats().Issued
	fmt.Printf("\n%s\n", strings.Repeat("-", 40))
	fmt.Printf("handles issued this run: %d\n", issued)
	return nil
}
