package crash

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"exile-bot/internal/logger"
)

// RecoverWithStack recovers a panic and logs it with the stack trace.
// It must be called directly via defer.
func RecoverWithStack(moduleName string) {
	if r := recover(); r != nil {
		report(moduleName, r, debug.Stack(), false)
	}
}

// RecoverWithStackAndExit is the main goroutine variant: it logs and exits
// with a non-zero status so the supervisor restarts the process.
func RecoverWithStackAndExit(moduleName string) {
	if r := recover(); r != nil {
		report(moduleName, r, debug.Stack(), true)

		// give the rotating writer time to flush
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}
}

// SafeGoroutine starts fn in a goroutine that recovers from panics.
func SafeGoroutine(name string, fn func()) {
	go func() {
		defer RecoverWithStack(fmt.Sprintf("goroutine-%s", name))
		fn()
	}()
}

// AfterFunc runs fn once d has elapsed, recovering from panics. The returned
// timer can be stopped like any time.Timer.
func AfterFunc(name string, d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		defer RecoverWithStack(fmt.Sprintf("timer-%s", name))
		fn()
	})
}

func report(moduleName string, r any, stack []byte, fatal bool) {
	prefix := "PANIC"
	if fatal {
		prefix = "FATAL PANIC"
	}

	logger.Errorf("%s in %s: %v", prefix, moduleName, r)
	logger.Errorf("Stack trace:\n%s", string(stack))

	// also on stderr so container logs have it
	fmt.Fprintf(os.Stderr, "[%s] %s - %s: %v\n", prefix, time.Now().Format("2006-01-02 15:04:05"), moduleName, r)
	fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", string(stack))

	logRuntimeInfo()
}

// logRuntimeInfo records runtime state to help debugging
func logRuntimeInfo() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := fmt.Sprintf(`
Runtime Information:
- Go version: %s
- Number of CPUs: %d
- Number of goroutines: %d
- Memory stats:
  - Heap allocated: %d KB
  - Heap in use: %d KB
  - Stack in use: %d KB
  - Num GC: %d
`,
		runtime.Version(),
		runtime.NumCPU(),
		runtime.NumGoroutine(),
		m.HeapAlloc/1024,
		m.HeapInuse/1024,
		m.StackInuse/1024,
		m.NumGC,
	)

	logger.Error(info)
}

// SetupCrashHandler turns memory faults into recoverable panics.
func SetupCrashHandler() {
	debug.SetPanicOnFault(true)
}
