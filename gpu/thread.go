package gpu

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// CoreThread serializes all GPU work on one goroutine. Commands posted from
// any goroutine run in order inside Run; code that mutates device state checks
// MustOwn so that it can only run from inside such a command.
type CoreThread struct {
	name      string
	cmds      chan func()
	owner     atomic.Uint64 // goroutine executing a command, 0 when idle
	stopOnce  sync.Once
	stop      chan struct{}
	log       Logger
}

func NewCoreThread(name string, backlog int, log Logger) *CoreThread {
	if backlog <= 0 {
		backlog = 4
	}
	if log == nil {
		log = nopLogger{}
	}
	return &CoreThread{
		name: name,
		cmds: make(chan func(), backlog),
		stop: make(chan struct{}),
		log:  log,
	}
}

// Run executes posted commands until ctx is done or Stop is called. It locks
// the calling goroutine to its OS thread, as window systems and some GPU
// APIs require. Call it from exactly one goroutine.
func (t *CoreThread) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case fn := <-t.cmds:
			t.exec(fn)
		}
	}
}

// RunPending executes commands already queued without blocking, for callers
// that own a frame loop (the glfw main loop) and pump the thread themselves.
func (t *CoreThread) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-t.cmds:
			t.exec(fn)
			n++
		default:
			return n
		}
	}
}

func (t *CoreThread) exec(fn func()) {
	prev := t.owner.Swap(goroutineID())
	defer t.owner.Store(prev)
	fn()
}

// goroutineID parses the id of the calling goroutine from the header line of
// its stack trace, "goroutine 42 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic(fmt.Errorf("parse goroutine id from %q: %w", buf[:], err))
	}
	return id
}

// Post queues fn for the core thread. It blocks while the backlog is full and
// reports false if the thread was stopped.
func (t *CoreThread) Post(fn func()) bool {
	select {
	case <-t.stop:
		return false
	default:
	}
	select {
	case t.cmds <- fn:
		return true
	case <-t.stop:
		return false
	}
}

// Do runs fn on the core thread and waits for it to return. Calling Do from
// a core thread command deadlocks.
func (t *CoreThread) Do(fn func()) bool {
	done := make(chan struct{})
	if !t.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-t.stop:
		return false
	}
}

func (t *CoreThread) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Owned reports whether the caller is the goroutine currently running a core
// thread command. Other goroutines are not owners even while a command runs.
func (t *CoreThread) Owned() bool {
	owner := t.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// MustOwn panics when op is invoked outside the core thread.
func (t *CoreThread) MustOwn(op string) {
	if t.Owned() {
		return
	}
	t.log.Errorf("%s called outside core thread %q", op, t.name)
	panic(fmt.Errorf("%s: %w", op, ErrWrongThread))
}
