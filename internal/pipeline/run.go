package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arena/internal/adapt"
	"arena/internal/builder"
	"arena/internal/config"
	"arena/internal/convert"
	"arena/internal/execute"
	"arena/internal/member"
	"arena/internal/metrics"
	"arena/internal/minimize"
	"arena/internal/record"
	"arena/internal/sheet"
	"arena/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runner runs every sequence of a sheet against many candidate classes. Each
// class is one task on a bounded worker pool; a failing class is logged and
// never affects the others.
type Runner struct {
	Engine    *adapt.Engine
	Cache     *adapt.Cache
	Builder   *builder.Builder
	Substrate execute.Substrate
	// Store receives cells and adapter descriptions; nil skips persistence.
	Store storage.CellStore

	Workers         int
	Timeout         time.Duration
	MaxPermutations int
	SerializeInputs bool
	SerializeOps    bool
	Policy          minimize.Policy

	Logger *slog.Logger
}

// NewRunner wires a runner from configuration.
func NewRunner(cfg *config.Config, store storage.CellStore, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine := adapt.NewDefaultEngine(convert.NewDefaultCatalogue(), cfg.Adaptation.MaxOverfit,
		adapt.WithMaxParamsLength(cfg.Adaptation.MaxParamsLength))
	cache, err := adapt.NewCache(engine, cfg.Adaptation.CacheSize, adapt.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptation cache: %w", err)
	}
	return &Runner{
		Engine:          engine,
		Cache:           cache,
		Builder:         builder.New(builder.WithLogger(logger)),
		Substrate:       execute.NewInProcess(execute.WithLogger(logger)),
		Store:           store,
		Workers:         cfg.Execution.Workers,
		Timeout:         cfg.Execution.Timeout,
		MaxPermutations: cfg.Adaptation.MaxPermutations,
		SerializeInputs: *cfg.Record.SerializeInputs,
		SerializeOps:    *cfg.Record.SerializeOperations,
		Policy: minimize.Policy{
			DropFailedSequences: cfg.Minimize.DropFailedSequences,
			MinimizeSequences:   cfg.Minimize.MinimizeSequences,
		},
		Logger: logger,
	}, nil
}

// Result collects the outcome of one run.
type Result struct {
	ExecutionID     string
	Implementations []*ImplementationResult
}

// Failed counts implementations that ended with an error.
func (r *Result) Failed() int {
	n := 0
	for _, impl := range r.Implementations {
		if impl.Err != nil {
			n++
		}
	}
	return n
}

// ImplementationResult is what one adaptation of one class produced.
type ImplementationResult struct {
	Implementation string
	AdapterID      string
	Bindings       []adapt.Binding
	Records        []*record.SequenceExecutionRecord
	Cells          []record.Cell
	Err            error
}

// source yields the adaptations of one class.
type source struct {
	name  string
	adapt func() ([]*adapt.AdaptedImplementation, error)
}

// Run executes the sheet against classes. Errors of individual classes are
// reported in the result; Run itself fails only when the execution summary
// cannot be stored.
func (r *Runner) Run(ctx context.Context, name string, sh *sheet.Sheet, classes []*member.Class) (*Result, error) {
	sources := make([]source, len(classes))
	for i, class := range classes {
		class := class
		sources[i] = source{name: class.Name, adapt: func() ([]*adapt.AdaptedImplementation, error) {
			return r.Cache.AdaptAll(sh.Interface, class, r.MaxPermutations), nil
		}}
	}
	return r.execute(ctx, name, sh, sources)
}

// Replay executes the sheet against the adaptations stored for a previous
// execution, rebuilding each one from its bindings instead of matching.
func (r *Runner) Replay(ctx context.Context, name string, sh *sheet.Sheet, previous string, registry *member.Registry) (*Result, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("replay of %s needs a store", previous)
	}
	adapters, err := r.Store.LoadAdapters(ctx, previous)
	if err != nil {
		return nil, fmt.Errorf("failed to load adapters of %s: %w", previous, err)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters stored for execution %s: %w", previous, storage.ErrNotFound)
	}

	var names []string
	groups := map[string][]*storage.Adapter{}
	for _, a := range adapters {
		if _, ok := groups[a.Implementation]; !ok {
			names = append(names, a.Implementation)
		}
		groups[a.Implementation] = append(groups[a.Implementation], a)
	}

	sources := make([]source, len(names))
	for i, n := range names {
		n := n
		sources[i] = source{name: n, adapt: func() ([]*adapt.AdaptedImplementation, error) {
			return r.replayClass(sh, registry, n, groups[n])
		}}
	}
	return r.execute(ctx, name, sh, sources)
}

func (r *Runner) replayClass(sh *sheet.Sheet, registry *member.Registry, name string, adapters []*storage.Adapter) ([]*adapt.AdaptedImplementation, error) {
	class, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("implementation %s is not registered", name)
	}
	out := make([]*adapt.AdaptedImplementation, 0, len(adapters))
	for _, a := range adapters {
		impl, err := r.Engine.Replay(sh.Interface, class, a.AdapterID, a.Bindings, adapt.WithLogger(r.Logger))
		if err != nil {
			return nil, fmt.Errorf("failed to replay %s: %w", a.AdapterID, err)
		}
		out = append(out, impl)
	}
	return out, nil
}

func (r *Runner) execute(ctx context.Context, name string, sh *sheet.Sheet, sources []source) (*Result, error) {
	execID := uuid.NewString()
	started := time.Now()
	r.Logger.Info("execution started", "execution", execID, "sheet", name, "classes", len(sources), "workers", r.Workers)

	slots := make([][]*ImplementationResult, len(sources))
	var g errgroup.Group
	g.SetLimit(max(r.Workers, 1))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			slots[i] = r.classTask(ctx, execID, sh, src)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{ExecutionID: execID}
	for _, s := range slots {
		res.Implementations = append(res.Implementations, s...)
	}

	if r.Store != nil {
		exec := &storage.Execution{
			ID:              execID,
			Sheet:           name,
			StartedAt:       started,
			Implementations: len(res.Implementations),
			Failed:          res.Failed(),
		}
		if err := r.Store.SaveExecution(ctx, exec); err != nil {
			return res, fmt.Errorf("failed to save execution %s: %w", execID, err)
		}
	}
	r.Logger.Info("execution finished", "execution", execID, "implementations", len(res.Implementations),
		"failed", res.Failed(), "elapsed", time.Since(started))
	return res, nil
}

// classTask adapts one class and runs every resulting adaptation.
func (r *Runner) classTask(ctx context.Context, execID string, sh *sheet.Sheet, src source) (out []*ImplementationResult) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("implementation task panicked", "class", src.name, "panic", p)
			metrics.ImplementationsTotal.WithLabelValues("failed").Inc()
			out = append(out, &ImplementationResult{Implementation: src.name, Err: fmt.Errorf("task panicked: %v", p)})
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	impls, err := src.adapt()
	if err != nil {
		r.Logger.Error("adaptation failed", "execution", execID, "class", src.name, "error", err)
		metrics.ImplementationsTotal.WithLabelValues("failed").Inc()
		return []*ImplementationResult{{Implementation: src.name, Err: err}}
	}
	for _, impl := range impls {
		res := r.implementationTask(tctx, execID, sh, impl)
		if res.Err != nil {
			r.Logger.Error("implementation failed", "execution", execID, "implementation", impl.ID, "error", res.Err)
			metrics.ImplementationsTotal.WithLabelValues("failed").Inc()
		} else {
			metrics.ImplementationsTotal.WithLabelValues("ok").Inc()
		}
		out = append(out, res)
	}
	return out
}

func (r *Runner) implementationTask(ctx context.Context, execID string, sh *sheet.Sheet, impl *adapt.AdaptedImplementation) *ImplementationResult {
	res := &ImplementationResult{
		Implementation: impl.Class.Name,
		AdapterID:      impl.ID,
		Bindings:       adapt.Describe(impl),
	}

	records, buildErr := r.buildStage(sh, impl)
	if err := r.executeStage(ctx, records); err != nil {
		res.Err = err
		return res
	}
	res.Records = minimize.Minimize(records, r.Policy)
	res.Cells = r.serializeStage(execID, res.Records)

	if err := r.storeStage(ctx, execID, res); err != nil {
		res.Err = err
		return res
	}
	res.Err = buildErr
	return res
}

// buildStage instantiates every sequence. A sequence that cannot be built is
// skipped; the others still run.
func (r *Runner) buildStage(sh *sheet.Sheet, impl *adapt.AdaptedImplementation) ([]*record.SequenceExecutionRecord, error) {
	var records []*record.SequenceExecutionRecord
	var errs []error
	for _, seq := range sh.Sequences {
		rec, err := r.Builder.Instantiate(seq, impl)
		if err != nil {
			r.Logger.Warn("sequence skipped", "implementation", impl.ID, "sequence", seq.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func (r *Runner) executeStage(ctx context.Context, records []*record.SequenceExecutionRecord) error {
	for _, rec := range records {
		if err := rec.Execute(ctx, r.Substrate); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) serializeStage(execID string, records []*record.SequenceExecutionRecord) []record.Cell {
	opts := record.SerializeOptions{
		ExecutionID:         execID,
		SerializeInputs:     r.SerializeInputs,
		SerializeOperations: r.SerializeOps,
		Logger:              r.Logger,
	}
	var cells []record.Cell
	for _, rec := range records {
		cells = append(cells, rec.Cells(opts)...)
	}
	return cells
}

func (r *Runner) storeStage(ctx context.Context, execID string, res *ImplementationResult) error {
	if r.Store == nil {
		return nil
	}
	adapter := &storage.Adapter{
		ExecutionID:    execID,
		Implementation: res.Implementation,
		AdapterID:      res.AdapterID,
		Bindings:       res.Bindings,
	}
	if err := r.Store.SaveAdapter(ctx, adapter); err != nil {
		return fmt.Errorf("failed to save adapter %s: %w", res.AdapterID, err)
	}
	if err := r.Store.SaveCells(ctx, res.Cells); err != nil {
		return fmt.Errorf("failed to save cells of %s: %w", res.AdapterID, err)
	}
	return nil
}
