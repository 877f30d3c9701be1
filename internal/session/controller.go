package session

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/gateway"
	"github.com/spigell/resume-analyzer/internal/intake"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/notice"
	"github.com/spigell/resume-analyzer/internal/utils"
)

const defaultMaxLogLength = 200

// Analyzer performs one remote analysis. *gateway.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, file intake.File, description string) (*gateway.Result, error)
}

// Deps aggregates what the controller needs from the outside.
type Deps struct {
	Analyzer Analyzer
	Notifier notice.Notifier
	Logger   *zap.Logger
	// OnChange is called from the event loop after every revision bump.
	// It must not call back into the controller.
	OnChange     func(Snapshot)
	MaxLogLength int
}

// Controller owns the résumé selection, the job description and the
// submission state. All of them are touched only by the goroutine running
// Run; the exported methods hand work to it and wait for the result.
type Controller struct {
	analyzer  Analyzer
	notifier  notice.Notifier
	logger    *zap.Logger
	onChange  func(Snapshot)
	maxLogLen int

	events  chan func(ctx context.Context)
	stopped chan struct{}
	running atomic.Bool

	intake      *intake.Intake
	description string
	state       State
	revision    uint64
	// settled is closed when the in-flight request completes.
	settled chan struct{}
}

func New(deps Deps) *Controller {
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}

	n := deps.Notifier
	if n == nil {
		n = notice.Discard
	}

	maxLogLen := deps.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Controller{
		analyzer:  deps.Analyzer,
		notifier:  n,
		logger:    l,
		onChange:  deps.OnChange,
		maxLogLen: maxLogLen,
		events:    make(chan func(ctx context.Context)),
		stopped:   make(chan struct{}),
		intake:    intake.New(),
	}
}

// Run processes events until ctx is done. Cancelling ctx also aborts an
// in-flight request. Run may be called only once, and the other methods
// block until it has been started.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer close(c.stopped)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			ev(ctx)
		}
	}
}

func (c *Controller) SelectCandidate(f intake.File) error {
	var err error
	if doErr := c.do(func(context.Context) { err = c.selectCandidate(f) }); doErr != nil {
		return doErr
	}
	return err
}

func (c *Controller) SetDragActive(active bool) error {
	return c.do(func(context.Context) {
		c.gesture(func() { c.intake.SetDragActive(active) })
	})
}

func (c *Controller) DragEnter(ev intake.DragEvent) error {
	return c.do(func(context.Context) {
		c.gesture(func() { c.intake.DragEnter(ev) })
	})
}

func (c *Controller) DragOver(ev intake.DragEvent) error {
	return c.do(func(context.Context) {
		c.gesture(func() { c.intake.DragOver(ev) })
	})
}

func (c *Controller) DragLeave(ev intake.DragEvent) error {
	return c.do(func(context.Context) {
		c.gesture(func() { c.intake.DragLeave(ev) })
	})
}

// Drop ends the drag gesture and selects the first dropped file.
func (c *Controller) Drop(ev intake.DragEvent, files []intake.File) error {
	var err error
	doErr := c.do(func(context.Context) {
		wasActive := c.intake.DragActive()

		err = c.intake.Drop(ev, files)
		if err != nil {
			c.rejectFile(files[0], err)
		} else if len(files) > 0 {
			logger.WithFileFields(c.logger, files[0].Name, files[0].MIMEType).Debug("resume dropped", zap.Int("size", len(files[0].Content)))
		}

		if wasActive != c.intake.DragActive() || err == nil && len(files) > 0 {
			c.changed()
		}
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// UpdateDescription replaces the job description verbatim.
func (c *Controller) UpdateDescription(text string) error {
	return c.do(func(context.Context) {
		if text == c.description {
			return
		}
		c.description = text
		c.changed()
	})
}

// Submit starts an analysis of the current résumé and description. The state
// is InFlight by the time Submit returns; the outcome arrives later.
func (c *Controller) Submit() error {
	var err error
	if doErr := c.do(func(ctx context.Context) { err = c.submit(ctx) }); doErr != nil {
		return doErr
	}
	return err
}

// Snapshot returns a copy of the current controller state.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.do(func(context.Context) { snap = c.snapshot() })
	return snap, err
}

// Await blocks until no request is in flight and returns the state then.
func (c *Controller) Await(ctx context.Context) (State, error) {
	var settled chan struct{}
	if err := c.do(func(context.Context) { settled = c.settled }); err != nil {
		return State{}, err
	}

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return State{}, ctx.Err()
		case <-c.stopped:
			return State{}, ErrStopped
		}
	}

	snap, err := c.Snapshot()
	if err != nil {
		return State{}, err
	}

	return snap.State, nil
}

func (c *Controller) selectCandidate(f intake.File) error {
	if err := c.intake.Select(f); err != nil {
		c.rejectFile(f, err)
		return err
	}

	logger.WithFileFields(c.logger, f.Name, f.MIMEType).Debug("resume selected", zap.Int("size", len(f.Content)))
	c.changed()

	return nil
}

func (c *Controller) rejectFile(f intake.File, err error) {
	logger.WithFileFields(c.logger, f.Name, f.MIMEType).Warn("resume rejected", zap.Error(err))
	c.notify(notice.InvalidFormat, err)
}

func (c *Controller) gesture(apply func()) {
	before := c.intake.DragActive()
	apply()
	if before != c.intake.DragActive() {
		c.changed()
	}
}

func (c *Controller) submit(ctx context.Context) error {
	if c.state.Phase == InFlight {
		err := &PreconditionError{Busy: true}
		c.logger.Debug("submission rejected", zap.Error(err))
		c.notify(notice.Busy, err)
		return err
	}

	file, hasFile := c.intake.Selected()
	if !hasFile || c.description == "" {
		err := &PreconditionError{MissingResume: !hasFile, MissingDescription: c.description == ""}
		c.logger.Debug("submission rejected", zap.Error(err))
		c.notify(notice.MissingInput, err)
		return err
	}

	description := c.description
	settled := make(chan struct{})

	c.state = State{Phase: InFlight, Result: c.state.Result}
	c.settled = settled
	c.changed()

	log := logger.WithFileFields(c.logger, file.Name, file.MIMEType)
	log.Info("analysis submitted",
		zap.Int("description_length", len([]rune(description))),
		zap.String("description_preview", utils.TruncateForLog(description, c.maxLogLen)),
	)

	go func() {
		result, err := c.analyzer.Analyze(ctx, file, description)
		if err == nil && result == nil {
			err = errors.New("analysis returned no result")
		}

		complete := func(context.Context) { c.complete(log, settled, result, err) }
		select {
		case c.events <- complete:
		case <-c.stopped:
		}
	}()

	return nil
}

func (c *Controller) complete(log *zap.Logger, settled chan struct{}, result *gateway.Result, err error) {
	if err != nil {
		log.Warn("analysis failed", zap.Error(err))
		c.state = State{Phase: Failed, Result: c.state.Result, Err: err}
		c.notify(notice.ConnectionFailed, err)
	} else {
		log.Info("analysis completed",
			zap.Float64("match_score", result.MatchScore),
			zap.String("verdict", result.Verdict),
			zap.Int("matching_skills", len(result.MatchingSkills)),
			zap.Int("missing_skills", len(result.MissingSkills)),
		)
		c.state = State{Phase: Succeeded, Result: result}
	}

	c.settled = nil
	c.changed()
	close(settled)
}

func (c *Controller) notify(kind notice.Kind, err error) {
	c.notifier.Notify(notice.New(kind, err))
}

func (c *Controller) changed() {
	c.revision++
	if c.onChange != nil {
		c.onChange(c.snapshot())
	}
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		DragActive:  c.intake.DragActive(),
		Description: c.description,
		State:       c.state,
		Revision:    c.revision,
	}

	if f, ok := c.intake.Selected(); ok {
		snap.Selected = &f
	}

	return snap
}

// do runs fn on the event loop and waits for it to finish.
func (c *Controller) do(fn func(ctx context.Context)) error {
	done := make(chan struct{})
	ev := func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}

	select {
	case c.events <- ev:
	case <-c.stopped:
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-c.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	}
}
