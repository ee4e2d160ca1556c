// Package shutdown runs registered cleanup hooks in priority order when a
// verification run ends or is interrupted. Low priorities run first: stop
// admitting work before killing tool processes, kill tool processes
// before flushing output.
package shutdown

import (
	"container/heap"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	// PriorityIngress stops new fixtures from being launched.
	PriorityIngress = 0
	PriorityDefault = 100
	// PriorityWorkers kills in-flight tool process trees.
	PriorityWorkers = 200
	// PriorityReport flushes partial output once nothing is writing anymore.
	PriorityReport   = 300
	PriorityCritical = 400
)

type hook struct {
	label    string
	priority int
	fn       func()
	index    int // for heap interface
}

type hookHeap []*hook

func (h hookHeap) Len() int           { return len(h) }
func (h hookHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h hookHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *hookHeap) Push(x any) {
	n := len(*h)
	item := x.(*hook)
	item.index = n
	*h = append(*h, item)
}

func (h *hookHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

var (
	hooks    hookHeap
	hooksMux sync.Mutex
	once     sync.Once
)

func AddHook(label string, fn func()) {
	AddHookWithPriority(label, PriorityDefault, fn)
}

func AddHookWithPriority(label string, priority int, fn func()) {
	hooksMux.Lock()
	defer hooksMux.Unlock()

	heap.Push(&hooks, &hook{label: label, priority: priority, fn: fn})
}

// Shutdown drains the hook heap in priority order. Hooks run at most
// once; calling Shutdown again after the heap drained is a no-op, so it
// is safe to both defer it and trigger it from a signal.
func Shutdown() {
	hooksMux.Lock()
	defer hooksMux.Unlock()

	if len(hooks) == 0 {
		return
	}

	logger.V(2).Infof("running %d shutdown hooks", len(hooks))

	for hooks.Len() > 0 {
		h := heap.Pop(&hooks).(*hook)
		logger.V(3).Infof("shutdown hook %s (priority=%d)", h.label, h.priority)

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("panic in shutdown hook %s: %v", h.label, r)
				}
			}()
			h.fn()
		}()
	}
}

// RecoverAndShutdown is deferred from main. On a normal exit it drains
// the hooks; on a panic it logs the panic, drains the hooks so tool
// processes do not outlive the run, and exits non-zero.
func RecoverAndShutdown() {
	if r := recover(); r != nil {
		logger.Errorf("panic: %v", r)
		Shutdown()
		os.Exit(2)
	}
	Shutdown()
}

// OnInterrupt watches for SIGINT/SIGTERM in the background. The first
// signal runs the hooks and leaves the process to unwind normally, so an
// interrupted run can still print its partial report. A second signal
// exits immediately.
func OnInterrupt() {
	once.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			_, _ = fmt.Fprintf(os.Stderr, "\nReceived %s - finishing partial report, Ctrl+C again to force exit\n", sig)
			Shutdown()

			<-sigChan
			_, _ = fmt.Fprintln(os.Stderr, "\nForce exit")
			os.Exit(1)
		}()
	})
}
