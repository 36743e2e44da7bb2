package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskgraph/graph"
	"taskgraph/postprocess"
	"taskgraph/resolver"
	"taskgraph/scheduler"
	"taskgraph/worker"
)

const respawnAttempts = 3

// ExecuteTaskLists runs sched's per-worker task lists against a pool of
// subprocess workers, resolving each step's argument tree against the shared
// result table, and returns the flat per-task result mapping.
//
// Scheduling model: one OS process per worker list (see package worker). Each
// worker executes its list strictly in order; workers synchronize at the
// boundary of every round (time-index) since a later round's dependencies can
// reach across workers. A per-task wait that exceeds the configured timeout
// kills the owning worker's process group and respawns a fresh worker for the
// remainder of its list, so one bad task never poisons the rest of the run.
//
// The result is a *graph.IDMap rather than a literal Go map since a task
// identifier may be a graph.Tuple, which cannot serve as a native map key.
func ExecuteTaskLists(ctx context.Context, sched *scheduler.Schedule, opts ...Option) (*graph.IDMap[graph.Cell], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	workerCount := len(sched.TaskLists)
	if cfg.registry != nil {
		if err := validateRegistrations(sched, cfg.registry); err != nil {
			return nil, err
		}
	}

	maxInFlight := int64(cfg.workers)
	if maxInFlight < 1 {
		maxInFlight = int64(workerCount)
		if maxInFlight < 1 {
			maxInFlight = 1
		}
	}
	sup := worker.NewSupervisor(maxInFlight)

	handles := make([]*worker.Handle, workerCount)
	for w := 0; w < workerCount; w++ {
		h, err := sup.Spawn(ctx)
		if err != nil {
			shutdownAll(handles)
			return nil, fmt.Errorf("executor: spawn worker %d: %w", w, err)
		}
		handles[w] = h
	}
	defer shutdownAll(handles)

	results := graph.NewResultTable()
	costs := graph.NewIDMap[*Costs]()
	var costsMu sync.Mutex

	raw := make([][]graph.Cell, workerCount)
	for w, list := range sched.TaskLists {
		raw[w] = make([]graph.Cell, len(list))
	}

	maxRounds := 0
	for _, list := range sched.TaskLists {
		if len(list) > maxRounds {
			maxRounds = len(list)
		}
	}

	for round := 0; round < maxRounds; round++ {
		var wg sync.WaitGroup
		for w := 0; w < workerCount; w++ {
			if round >= len(sched.TaskLists[w]) {
				continue
			}
			w := w
			wg.Add(1)
			go func() {
				defer wg.Done()
				dispatchRound(ctx, sup, handles, w, round, sched, results, raw, &cfg, costs, &costsMu)
			}()
		}
		wg.Wait()

		for w := range raw {
			if round >= len(raw[w]) {
				continue
			}
			if c := raw[w][round]; c.Err != nil && errors.Is(c.Err, worker.ErrPoolExhausted) {
				return nil, fmt.Errorf("executor: worker %d: %w", w, c.Err)
			}
		}
	}

	flat, err := postprocess.CollectResults(sched.TaskLists, sched.TaskIDs, raw)
	if err != nil {
		return nil, err
	}
	if cfg.inflate {
		flat = wrapInflated(postprocess.InflateResults(flat))
	}

	if cfg.costs {
		costsCopy := graph.NewIDMap[Costs]()
		costsMu.Lock()
		costs.Range(func(id graph.TaskID, c *Costs) bool {
			costsCopy.Set(id, *c)
			return true
		})
		costsMu.Unlock()

		if cfg.inflate {
			flat.Set(CostsKey, graph.ValueCell(postprocess.InflateResults(costsCopy)))
		} else {
			flat.Set(CostsKey, graph.ValueCell(costsCopy))
		}
	}
	return flat, nil
}

// wrapInflated folds postprocess.InflateResults' *graph.IDMap[any] view back
// into a *graph.IDMap[graph.Cell], so ExecuteTaskLists can return the same
// shape whether or not WithInflate was requested: a passed-through graph.Cell
// stays a graph.Cell, and a one-level-nested *graph.IDMap[graph.Cell] group is
// carried as a cell's Value.
func wrapInflated(inflated *graph.IDMap[any]) *graph.IDMap[graph.Cell] {
	out := graph.NewIDMap[graph.Cell]()
	inflated.Range(func(id graph.TaskID, v any) bool {
		if cell, ok := v.(graph.Cell); ok {
			out.Set(id, cell)
		} else {
			out.Set(id, graph.ValueCell(v))
		}
		return true
	})
	return out
}

func dispatchRound(
	ctx context.Context,
	sup *worker.Supervisor,
	handles []*worker.Handle,
	w int,
	round int,
	sched *scheduler.Schedule,
	results *graph.ResultTable,
	raw [][]graph.Cell,
	cfg *config,
	costs *graph.IDMap[*Costs],
	costsMu *sync.Mutex,
) {
	step := sched.TaskLists[w][round]
	ids := normalizeIDs(sched.TaskIDs[w][round])

	roundStart := time.Now()

	resolvedArgs, err := resolver.ExpandArgs(step.Args, results)
	if err != nil {
		cellErr := asErr(err)
		cell := graph.ErrCell(cellErr)
		setAll(results, ids, cell)
		raw[w][round] = cell
		recordOutcome(cfg, ids, cellErr, time.Since(roundStart))
		return
	}

	invCtx := ctx
	var cancel context.CancelFunc
	if cfg.haveTimeout {
		invCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	taskStart := time.Now()
	result, err := handles[w].Invoke(invCtx, worker.Invocation{FuncRef: step.Fn, Args: resolvedArgs, Slot: round})
	wall := time.Since(taskStart)
	wait := taskStart.Sub(roundStart)

	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		_ = handles[w].Kill()
		fresh, spawnErr := respawn(ctx, sup, cfg)
		if spawnErr != nil {
			cell := graph.ErrCell(asErr(spawnErr))
			setAll(results, ids, cell)
			raw[w][round] = cell
			return
		}
		handles[w] = fresh
		timeoutErr := graph.NewTimeoutError(ids[0])
		cell := graph.ErrCell(timeoutErr)
		setAll(results, ids, cell)
		raw[w][round] = cell
		recordOutcome(cfg, ids, timeoutErr, wait)
		if cfg.recorder != nil {
			cfg.recorder.RecordRespawn(w, 1)
		}
		return
	}
	if err != nil {
		userErr := graph.NewUserError(err)
		cell := graph.ErrCell(userErr)
		setAll(results, ids, cell)
		raw[w][round] = cell
		recordOutcome(cfg, ids, userErr, wait)
		return
	}
	if result.Err != "" {
		userErr := graph.NewUserError(errors.New(result.Err))
		cell := graph.ErrCell(userErr)
		setAll(results, ids, cell)
		raw[w][round] = cell
		recordOutcome(cfg, ids, userErr, wait)
		return
	}

	cell := graph.ValueCell(result.Value)
	setAll(results, ids, cell)
	raw[w][round] = cell

	if cfg.costs {
		costsMu.Lock()
		for _, id := range ids {
			costs.Set(id, &Costs{Wall: wall, Waits: map[any]time.Duration{"round_start": wait}})
		}
		costsMu.Unlock()
	}
	if cfg.recorder != nil {
		waits := map[any]time.Duration{"round_start": wait}
		for _, id := range ids {
			cfg.recorder.RecordTask(id, wall, waits, outcomeLabel(nil))
		}
	}
}

func respawn(ctx context.Context, sup *worker.Supervisor, cfg *config) (*worker.Handle, error) {
	var lastErr error
	for attempt := 0; attempt < respawnAttempts; attempt++ {
		time.Sleep(worker.RespawnBackoff)
		h, err := sup.Spawn(ctx)
		if err == nil {
			return h, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", worker.ErrPoolExhausted, lastErr)
}

func recordOutcome(cfg *config, ids []graph.TaskID, err *graph.Err, wait time.Duration) {
	if cfg.recorder == nil {
		return
	}
	label := outcomeLabel(err)
	waits := map[any]time.Duration{"round_start": wait}
	for _, id := range ids {
		cfg.recorder.RecordTask(id, 0, waits, label)
	}
}

func outcomeLabel(e *graph.Err) string {
	switch {
	case e == nil:
		return "ok"
	case graph.IsTimeout(e):
		return "timeout"
	case e.TypeName() == "DependencyError":
		return "dependency_error"
	default:
		return "user_error"
	}
}

func asErr(err error) *graph.Err {
	if ge, ok := err.(*graph.Err); ok {
		return ge
	}
	return graph.NewErr("DependencyError", err)
}

func normalizeIDs(entry any) []graph.TaskID {
	switch v := entry.(type) {
	case []graph.TaskID:
		return v
	default:
		return []graph.TaskID{v}
	}
}

func setAll(results *graph.ResultTable, ids []graph.TaskID, cell graph.Cell) {
	for _, id := range ids {
		results.Set(id, cell)
	}
}

func shutdownAll(handles []*worker.Handle) {
	for _, h := range handles {
		if h != nil {
			_ = h.Shutdown(2 * time.Second)
		}
	}
}

func validateRegistrations(sched *scheduler.Schedule, registry *worker.Registry) error {
	for _, list := range sched.TaskLists {
		for _, step := range list {
			if _, ok := registry.Lookup(step.Fn); !ok {
				return &worker.ErrUnregisteredFunc{Ref: step.Fn}
			}
		}
	}
	return nil
}
