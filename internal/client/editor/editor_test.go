package editor

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

// fireLive runs every timer that has not been stopped and returns how many ran.
func (s *fakeScheduler) fireLive() int {
	s.mu.Lock()
	var live []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			live = append(live, t)
		}
	}
	s.mu.Unlock()
	for _, t := range live {
		t.fn()
	}
	return len(live)
}

type fakeSaver struct {
	mu      sync.Mutex
	creates int
	updates []string
	fail    error
	started chan struct{}
	gate    chan struct{}
}

func (s *fakeSaver) CreateCV(ctx context.Context, payload any) (*cv.Document, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.creates++
	doc := payload.(cv.Document)
	doc.ID = "cv-" + strconv.Itoa(s.creates)
	doc.UserID = "u1"
	return &doc, nil
}

func (s *fakeSaver) UpdateCV(ctx context.Context, id string, payload any) (*cv.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.updates = append(s.updates, id)
	doc := payload.(cv.Document)
	return &doc, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func newTestEditor(saver *fakeSaver) (*Editor, *fakeScheduler, *recordingNotifier) {
	sched := &fakeScheduler{}
	notes := &recordingNotifier{}
	e := New(saver, notes, logger.NewNopLogger(), WithScheduler(sched), WithDelay(2*time.Second))
	return e, sched, notes
}

func TestEditor_DebounceKeepsOneLiveTimer(t *testing.T) {
	saver := &fakeSaver{}
	e, sched, notes := newTestEditor(saver)

	e.Edit(func(d *cv.Document) { d.Name = "M" })
	e.Edit(func(d *cv.Document) { d.Name = "Mo" })
	e.Edit(func(d *cv.Document) { d.Name = "Mon CV" })

	require.Len(t, sched.timers, 3)
	assert.True(t, sched.timers[0].stopped)
	assert.True(t, sched.timers[1].stopped)
	assert.False(t, sched.timers[2].stopped)
	assert.Equal(t, 2*time.Second, sched.delays[2])

	assert.Equal(t, 1, sched.fireLive())
	assert.Equal(t, 1, saver.creates)
	assert.Empty(t, notes.successes, "autosave is silent")
	assert.False(t, e.Dirty())
	assert.Equal(t, "cv-1", e.Document().ID)
	assert.False(t, e.LastSaved().IsZero())
}

func TestEditor_CreatesOnceThenUpdates(t *testing.T) {
	saver := &fakeSaver{}
	e, sched, notes := newTestEditor(saver)

	e.Edit(func(d *cv.Document) { d.Name = "Mon CV" })
	sched.fireLive()
	e.Edit(func(d *cv.Document) { d.Skills = []string{"Go"} })
	require.NoError(t, e.Save(context.Background()))

	assert.Equal(t, 1, saver.creates)
	assert.Equal(t, []string{"cv-1"}, saver.updates)
	assert.Equal(t, []string{"CV saved"}, notes.successes)
	assert.Zero(t, sched.fireLive(), "manual save cancels the pending autosave")
}

func TestEditor_ConcurrentSavesCreateOnce(t *testing.T) {
	saver := &fakeSaver{gate: make(chan struct{})}
	e, _, _ := newTestEditor(saver)
	e.Edit(func(d *cv.Document) { d.Name = "Mon CV" })

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Save(context.Background())
		}()
	}
	close(saver.gate)
	wg.Wait()

	assert.Equal(t, 1, saver.creates)
	assert.Len(t, saver.updates, 1)
}

func TestEditor_FailuresAlwaysNotify(t *testing.T) {
	saver := &fakeSaver{fail: errors.New("boom")}
	e, sched, notes := newTestEditor(saver)

	e.Edit(func(d *cv.Document) { d.Name = "Mon CV" })
	sched.fireLive()
	assert.Error(t, e.Save(context.Background()))

	assert.Equal(t, []string{"Failed to save CV", "Failed to save CV"}, notes.errors)
	assert.True(t, e.Dirty())
}

func TestEditor_EditDuringSaveStaysDirty(t *testing.T) {
	saver := &fakeSaver{gate: make(chan struct{})}
	e, _, _ := newTestEditor(saver)
	e.Edit(func(d *cv.Document) { d.Name = "Mon CV" })

	done := make(chan error)
	go func() { done <- e.Save(context.Background()) }()

	e.Edit(func(d *cv.Document) { d.Template = "Modern Stack" })
	close(saver.gate)
	require.NoError(t, <-done)

	doc := e.Document()
	assert.Equal(t, "Modern Stack", doc.Template)
	assert.Equal(t, "cv-1", doc.ID)
}

func TestEditor_LoadDuringCreateKeepsNewDocumentUnsaved(t *testing.T) {
	saver := &fakeSaver{started: make(chan struct{}, 1), gate: make(chan struct{})}
	e, _, _ := newTestEditor(saver)
	e.Edit(func(d *cv.Document) { d.Name = "first" })

	done := make(chan error)
	go func() { done <- e.Save(context.Background()) }()
	<-saver.started

	e.Load(cv.Document{Name: "second"})
	close(saver.gate)
	require.NoError(t, <-done)

	doc := e.Document()
	assert.Empty(t, doc.ID)
	assert.Equal(t, "second", doc.Name)
	assert.False(t, e.Dirty())

	e.Edit(func(d *cv.Document) { d.Skills = []string{"Go"} })
	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, 2, saver.creates)
	assert.Empty(t, saver.updates)
	assert.Equal(t, "cv-2", e.Document().ID)
}

func TestEditor_FlushSavesPendingEdits(t *testing.T) {
	saver := &fakeSaver{}
	e, sched, notes := newTestEditor(saver)

	require.NoError(t, e.Flush(context.Background()))
	assert.Zero(t, saver.creates)

	e.Load(cv.Document{ID: "a1", Name: "Mon CV"})
	assert.False(t, e.Dirty())
	e.Edit(func(d *cv.Document) { d.Name = "CV Dev" })
	require.NoError(t, e.Flush(context.Background()))

	assert.Equal(t, []string{"a1"}, saver.updates)
	assert.Empty(t, notes.successes)
	assert.Zero(t, sched.fireLive())

	e.Edit(func(d *cv.Document) { d.Name = "after close" })
	assert.Zero(t, sched.fireLive(), "no timers after flush")
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("  exp add Dev | ACME | 2 ans | Go  ")
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "exp", Sub: "add", Arg: "Dev | ACME | 2 ans | Go"}, cmd)

	cmd, err = ParseCommand("name Mon CV")
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "name", Arg: "Mon CV"}, cmd)

	for _, bad := range []string{"", "fly away", "skill", "name"} {
		_, err := ParseCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestRun_AppliesCommands(t *testing.T) {
	saver := &fakeSaver{}
	e, _, _ := newTestEditor(saver)
	ctx := context.Background()
	var out bytes.Buffer

	lines := []string{
		"name Mon CV",
		"template Modern Stack",
		"status publié",
		"info email ana@example.com",
		"skill add Go",
		"skill add SQL",
		"skill add Go",
		"skill rm SQL",
		"lang add Français",
		"exp add Dev|ACME|2 ans|APIs",
		"exp add Intern|Init",
		"exp rm 1",
		"edu add Master|INSA|2020",
	}
	for _, line := range lines {
		cmd, err := ParseCommand(line)
		require.NoError(t, err, line)
		require.NoError(t, Run(ctx, e, cmd, &out), line)
	}

	d := e.Document()
	assert.Equal(t, "Mon CV", d.Name)
	assert.Equal(t, "Modern Stack", d.Template)
	assert.Equal(t, cv.StatusPublished, d.Status)
	assert.Equal(t, "ana@example.com", d.PersonalInfo.Email)
	assert.Equal(t, []string{"Go"}, d.Skills)
	assert.Equal(t, []string{"Français"}, d.Languages)
	require.Len(t, d.Experience, 1)
	assert.Equal(t, "Intern", d.Experience[0].Title)
	require.Len(t, d.Education, 1)
	assert.Equal(t, "2020", d.Education[0].Year)

	bad, _ := ParseCommand("status Deleted")
	assert.ErrorIs(t, Run(ctx, e, bad, &out), cv.ErrInvalidStatus)
	rm, _ := ParseCommand("exp rm 9")
	assert.Error(t, Run(ctx, e, rm, &out))
	quit, _ := ParseCommand("quit")
	assert.ErrorIs(t, Run(ctx, e, quit, &out), ErrQuit)

	show, _ := ParseCommand("show")
	require.NoError(t, Run(ctx, e, show, &out))
	assert.Contains(t, out.String(), "Intern @ Init")
}
