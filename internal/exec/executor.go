// Package exec runs a scheduled, expanded graph for one frame: it plans
// resource state transitions, groups passes into level-set batches,
// dispatches each batch serially or across a worker pool, and schedules
// deferred resource reclaim.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/rendergraph/internal/model"
	"github.com/gogpu/rendergraph/internal/tracker"
)

// Plan is the static, pre-computed input the executor walks for one
// frame: the scheduled pass list (post-expansion, post-scheduling),
// their explicit+hazard dependency map, and the build's cost function.
// The executor itself does not call Cost.
type Plan struct {
	Passes      []*model.Pass
	Order       []model.PassHandle
	Dependencies map[model.PassHandle][]model.PassHandle
	Cost        func(model.PassHandle) (cpuUS, gpuUS, memoryBytes int64)
	ActiveViews []model.ViewIndex
	FrameIndex  int64
}

// Executor runs a Plan against a FrameContext. It holds no state between
// frames; a fresh state tracker is created for every Execute call.
type Executor struct {
	logger        *slog.Logger
	parallelEnabled bool
}

// New returns a ready-to-use executor. A nil logger disables diagnostic
// logging of batch speedups and cycle failures.
func New(logger *slog.Logger, parallelEnabled bool) *Executor {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Executor{logger: logger, parallelEnabled: parallelEnabled}
}

// Execute sequences plan-transitions, execute-batches, and present as three
// ordinary sequential stages; ctx.Done() between stages is this module's
// analogue of cooperative suspension.
func (e *Executor) Execute(ctx context.Context, plan Plan, resources map[model.ResourceHandle]model.ResourceDescriptor, pool model.ThreadPool, graphics model.GraphicsLayer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st := e.planTransitions(plan, resources)
	_ = st // the planned-transition list is consumed by a real backend; the
	// core only computes it.

	if err := ctx.Err(); err != nil {
		return err
	}

	batches, err := e.buildBatches(plan)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		if err := e.executeBatch(ctx, batch, plan, pool); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e.present(plan, resources, graphics)
	return nil
}

// planTransitions resets a fresh tracker, seeds every resource to
// Undefined, then walks the execution order requesting a transition for
// every read and write. PerView passes replicate across every active view
// beyond their own (views 1..N-1 are additional; the pass's own view
// handles the first).
func (e *Executor) planTransitions(plan Plan, resources map[model.ResourceHandle]model.ResourceDescriptor) *tracker.StateTracker {
	st := tracker.New()
	for h := range resources {
		st.SetInitialState(h, model.StateUndefined, 0)
	}

	byHandle := make(map[model.PassHandle]*model.Pass, len(plan.Passes))
	for _, p := range plan.Passes {
		byHandle[p.Handle()] = p
	}

	for _, h := range plan.Order {
		p, ok := byHandle[h]
		if !ok {
			continue
		}

		views := []model.ViewIndex{p.View()}
		if p.Scope() == model.ScopePerView && len(plan.ActiveViews) > 0 {
			for _, v := range plan.ActiveViews {
				if v != p.View() {
					views = append(views, v)
				}
			}
		}

		for _, v := range views {
			reads, readStates := p.Reads(), p.ReadStates()
			for i, r := range reads {
				st.RequestTransition(r, readStates[i], p.Handle(), v)
			}
			writes, writeStates := p.Writes(), p.WriteStates()
			for i, w := range writes {
				st.RequestTransition(w, writeStates[i], p.Handle(), v)
			}
		}
	}

	return st
}

// buildBatches constructs level-set batches via Kahn's algorithm over
// plan.Order/Dependencies: remaining-deps counting, a dependents adjacency
// list, and a FIFO ready-queue whose current contents at each round form
// one batch.
func (e *Executor) buildBatches(plan Plan) ([][]model.PassHandle, error) {
	remaining := make(map[model.PassHandle]int, len(plan.Order))
	dependents := make(map[model.PassHandle][]model.PassHandle)

	for _, p := range plan.Order {
		remaining[p] = len(plan.Dependencies[p])
	}
	for _, p := range plan.Order {
		for _, d := range plan.Dependencies[p] {
			dependents[d] = append(dependents[d], p)
		}
	}

	var ready []model.PassHandle
	for _, p := range plan.Order {
		if remaining[p] == 0 {
			ready = append(ready, p)
		}
	}

	var batches [][]model.PassHandle
	scheduled := 0
	for len(ready) > 0 {
		level := ready
		ready = nil
		batches = append(batches, level)
		scheduled += len(level)

		for _, p := range level {
			for _, dep := range dependents[p] {
				remaining[dep]--
				if remaining[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		}
	}

	if scheduled < len(plan.Order) {
		e.logger.Error("batch construction found a cycle, aborting", "scheduled", scheduled, "total", len(plan.Order))
		return nil, fmt.Errorf("exec: dependency cycle: only %d of %d passes scheduled", scheduled, len(plan.Order))
	}
	return batches, nil
}

// invocationViews returns the per-pass view list per the invocation rule:
// PerView with a non-empty active-view set gets one invocation per active
// view; everything else gets exactly one invocation at its own view index.
func invocationViews(p *model.Pass, activeViews []model.ViewIndex) []model.ViewIndex {
	if p.Scope() == model.ScopePerView && len(activeViews) > 0 {
		return activeViews
	}
	return []model.ViewIndex{p.View()}
}

// executeBatch runs every pass in batch. It goes serial when parallelism
// is disabled, the batch has at most one pass, or no pool is available;
// otherwise it dispatches one task per non-main-thread invocation through
// an errgroup and runs main-thread-only passes inline.
func (e *Executor) executeBatch(ctx context.Context, batch []model.PassHandle, plan Plan, pool model.ThreadPool) error {
	byHandle := make(map[model.PassHandle]*model.Pass, len(plan.Passes))
	for _, p := range plan.Passes {
		byHandle[p.Handle()] = p
	}

	canParallel := e.parallelEnabled && len(batch) > 1 && pool != nil
	if canParallel {
		for _, h := range batch {
			if _, ok := byHandle[h]; !ok {
				canParallel = false
				break
			}
		}
	}

	if !canParallel {
		return e.executeBatchSerial(ctx, batch, byHandle, plan.ActiveViews)
	}
	return e.executeBatchParallel(ctx, batch, byHandle, plan.ActiveViews, pool)
}

func (e *Executor) executeBatchSerial(ctx context.Context, batch []model.PassHandle, byHandle map[model.PassHandle]*model.Pass, activeViews []model.ViewIndex) error {
	start := time.Now()
	var sumCPUus int64

	for _, h := range batch {
		p := byHandle[h]
		if p == nil || p.Executor() == nil {
			continue
		}
		for _, v := range invocationViews(p, activeViews) {
			p.SetView(v)
			invStart := time.Now()
			if err := p.Executor()(&model.TaskExecutionContext{Ctx: ctx, View: v, Parallel: false}); err != nil {
				return fmt.Errorf("exec: pass %s: %w", p.Name(), err)
			}
			sumCPUus += time.Since(invStart).Microseconds()
		}
	}

	e.logSpeedup(sumCPUus, time.Since(start))
	return nil
}

func (e *Executor) executeBatchParallel(ctx context.Context, batch []model.PassHandle, byHandle map[model.PassHandle]*model.Pass, activeViews []model.ViewIndex, pool model.ThreadPool) error {
	start := time.Now()
	var sumCPUus int64
	var taskCPUus atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	for _, h := range batch {
		p := byHandle[h]
		if p == nil || p.Executor() == nil {
			continue
		}

		if p.RequiresMainThread() {
			for _, v := range invocationViews(p, activeViews) {
				p.SetView(v)
				invStart := time.Now()
				if err := p.Executor()(&model.TaskExecutionContext{Ctx: gctx, View: v, Parallel: false}); err != nil {
					return fmt.Errorf("exec: pass %s: %w", p.Name(), err)
				}
				sumCPUus += time.Since(invStart).Microseconds()
			}
			continue
		}

		for _, v := range invocationViews(p, activeViews) {
			executor := p.Executor()
			view := v
			name := p.Name()
			g.Go(func() error {
				return pool.Run(gctx, func(taskCtx context.Context) error {
					taskStart := time.Now()
					tctx := &model.TaskExecutionContext{Ctx: taskCtx, View: view, Parallel: true}
					if err := executor(tctx); err != nil {
						return fmt.Errorf("exec: pass %s: %w", name, err)
					}
					taskCPUus.Add(time.Since(taskStart).Microseconds())
					return nil
				})
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	sumCPUus += taskCPUus.Load()

	e.logSpeedup(sumCPUus, time.Since(start))
	return nil
}

func (e *Executor) logSpeedup(sumCPUus int64, wall time.Duration) {
	wallUs := wall.Microseconds()
	if wallUs <= 0 {
		return
	}
	speedup := float64(sumCPUus) / float64(wallUs)
	e.logger.Debug("batch complete", "sum_cpu_us", sumCPUus, "wall_us", wallUs, "speedup", speedup)
}

// present walks every resource with lifetime FrameLocal and, when a
// graphics capability is available, schedules it for reclaim.
func (e *Executor) present(plan Plan, resources map[model.ResourceHandle]model.ResourceDescriptor, graphics model.GraphicsLayer) {
	if graphics == nil {
		return
	}
	for h, desc := range resources {
		if desc.Lifetime() == model.LifetimeFrameLocal {
			graphics.ScheduleResourceReclaim(h, plan.FrameIndex, desc.Name())
		}
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler         { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler              { return discardHandler{} }
