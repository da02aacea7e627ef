package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/logger"
)

const DefaultAutosaveDelay = 2 * time.Second

type Saver interface {
	CreateCV(ctx context.Context, payload any) (*cv.Document, error)
	UpdateCV(ctx context.Context, id string, payload any) (*cv.Document, error)
}

type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Editor)

func WithDelay(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.delay = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(e *Editor) { e.scheduler = s }
}

func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// Editor holds the working copy of one document and saves it through Saver.
// Edits reschedule a single trailing autosave timer. Saves are serialised, so a
// document without an id is created once and updated afterwards.
type Editor struct {
	saver     Saver
	notifier  Notifier
	scheduler Scheduler
	delay     time.Duration
	now       func() time.Time
	logger    logger.Logger

	saveMu sync.Mutex

	mu         sync.Mutex
	doc        cv.Document
	epoch      uint64
	generation uint64
	savedGen   uint64
	timer      Timer
	lastSaved  time.Time
	closed     bool
}

func New(saver Saver, notifier Notifier, log logger.Logger, opts ...Option) *Editor {
	e := &Editor{
		saver:     saver,
		notifier:  notifier,
		scheduler: realScheduler{},
		delay:     DefaultAutosaveDelay,
		now:       time.Now,
		logger:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the working copy without marking it dirty. A save still in flight
// for the previous document does not touch the new one.
func (e *Editor) Load(doc cv.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.doc = doc
	e.epoch++
	e.generation++
	e.savedGen = e.generation
}

func (e *Editor) Document() cv.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation != e.savedGen
}

func (e *Editor) LastSaved() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// Edit applies fn to the working copy and restarts the autosave countdown.
func (e *Editor) Edit(fn func(doc *cv.Document)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.doc)
	e.generation++
	if e.closed {
		return
	}
	e.stopTimerLocked()
	e.timer = e.scheduler.AfterFunc(e.delay, e.autosave)
}

// Save is the explicit save; it reports success through the notifier.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	e.stopTimerLocked()
	e.mu.Unlock()
	return e.save(ctx, true)
}

// Flush saves pending edits silently and stops the autosave timer.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.stopTimerLocked()
	dirty := e.generation != e.savedGen
	e.mu.Unlock()
	if !dirty {
		return nil
	}
	return e.save(ctx, false)
}

func (e *Editor) autosave() {
	e.mu.Lock()
	e.timer = nil
	dirty := e.generation != e.savedGen
	e.mu.Unlock()
	if !dirty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.save(ctx, false); err != nil {
		e.logger.Debug("Autosave failed", zap.Error(err))
	}
}

func (e *Editor) save(ctx context.Context, announce bool) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	snapshot := e.doc
	epoch := e.epoch
	gen := e.generation
	e.mu.Unlock()

	var (
		saved *cv.Document
		err   error
	)
	if snapshot.ID == "" {
		saved, err = e.saver.CreateCV(ctx, snapshot)
	} else {
		saved, err = e.saver.UpdateCV(ctx, snapshot.ID, snapshot)
	}
	if err != nil {
		e.notifier.Error("Failed to save CV", err)
		return err
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		if announce {
			e.notifier.Success("CV saved")
		}
		return nil
	}
	if e.doc.ID == "" {
		e.doc.ID = saved.ID
	}
	e.doc.UserID = saved.UserID
	e.doc.CreatedAt = saved.CreatedAt
	e.doc.UpdatedAt = saved.UpdatedAt
	if e.generation == gen {
		// nothing changed while saving; adopt the server copy
		e.doc = *saved
	}
	if gen > e.savedGen {
		e.savedGen = gen
	}
	e.lastSaved = e.now()
	e.mu.Unlock()

	if announce {
		e.notifier.Success("CV saved")
	}
	return nil
}

func (e *Editor) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
