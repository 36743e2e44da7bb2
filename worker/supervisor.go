package worker

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"
)

// RespawnBackoff is the fixed delay the executor waits before spawning a
// replacement worker after a timeout-triggered kill.
const RespawnBackoff = 50 * time.Millisecond

// ErrPoolExhausted is returned when a worker could not be (re)spawned after
// repeated attempts; it is the one worker-pool failure that aborts a run.
var ErrPoolExhausted = fmt.Errorf("worker: pool exhausted after repeated spawn failures")

// Supervisor is the parent-side process pool. It bounds how many spawn
// operations may be in flight at once (Handle.Kill is not bounded), guarding against a pathological graph
// that times out every task at once and would otherwise trigger an unbounded
// respawn storm.
type Supervisor struct {
	sem *semaphore.Weighted
}

// NewSupervisor returns a Supervisor allowing at most maxInFlight concurrent
// spawn operations.
func NewSupervisor(maxInFlight int64) *Supervisor {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Supervisor{sem: semaphore.NewWeighted(maxInFlight)}
}

// Handle is a live worker subprocess.
type Handle struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	enc   *gob.Encoder
	dec   *gob.Decoder
	mu    sync.Mutex
}

// Spawn re-executes the calling binary with the worker env sentinel set, wiring
// its stdin/stdout as the gob invocation/result pipe. The child is placed in its
// own process group so Kill can terminate it and any children it spawns.
func (s *Supervisor) Spawn(ctx context.Context) (*Handle, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("worker: resolve self executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), EnvSentinel+"=1")
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("worker: start subprocess: %w", err)
	}

	return &Handle{
		cmd:   cmd,
		stdin: stdin,
		enc:   gob.NewEncoder(stdin),
		dec:   gob.NewDecoder(stdout),
	}, nil
}

// Invoke sends inv to the worker and waits for its Result, bounded by ctx.
// On ctx cancellation the caller is responsible for killing the handle; a
// response that arrives after cancellation is simply dropped.
func (h *Handle) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.enc.Encode(inv); err != nil {
		return Result{}, fmt.Errorf("worker: send invocation: %w", err)
	}

	type decoded struct {
		result Result
		err    error
	}
	ch := make(chan decoded, 1)
	go func() {
		var r Result
		err := h.dec.Decode(&r)
		ch <- decoded{r, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case d := <-ch:
		if d.err != nil {
			return Result{}, fmt.Errorf("worker: receive result: %w", d.err)
		}
		return d.result, nil
	}
}

// Kill sends SIGKILL to the worker's entire process group, mirroring the
// teacher's isolated-execution cancellation approach.
func (h *Handle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-h.cmd.Process.Pid, syscall.SIGKILL)
}

// Shutdown closes the worker's stdin (signalling it to exit its decode loop)
// and waits for it to exit. If it does not exit within grace, it is killed.
func (h *Handle) Shutdown(grace time.Duration) error {
	_ = h.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		_ = h.Kill()
		return <-done
	}
}
