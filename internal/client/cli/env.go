package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/khoahotran/cvnova/internal/client/api"
	"github.com/khoahotran/cvnova/internal/client/app"
	"github.com/khoahotran/cvnova/internal/client/session"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var errNotSignedIn = errors.New("not signed in, run `cvnova login` first")

// Env carries everything a command needs. Clients are built lazily by init so
// flags such as --verbose are applied first.
type Env struct {
	Config config.ClientConfig
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Now    func() time.Time

	// ReadPassword overrides the terminal prompt, mainly for tests.
	ReadPassword func(prompt string) (string, error)

	API     *api.Client
	Session *session.Manager
	Store   *app.Store
	Logger  logger.Logger

	lines        *bufio.Reader
	ready        bool
	bootstrapped bool
	unbind       func()
}

func NewEnv(cfg config.ClientConfig, in io.Reader, out, errOut io.Writer) *Env {
	return &Env{Config: cfg, In: in, Out: out, Err: errOut, Now: time.Now}
}

func (e *Env) init(verbose bool) {
	if e.ready {
		return
	}
	e.ready = true
	if e.Logger == nil {
		e.Logger = logger.NewStderrLogger(verbose || e.Config.Verbose)
	}
	e.lines = bufio.NewReader(e.In)
	e.API = api.New(e.Config.APIURL, nil)
	e.Session = session.NewManager(e.API, session.NewFileTokenStore(e.Config.TokenFile), e.Logger)
	e.Store = app.NewStore(app.Initial())
	e.unbind = e.Session.Bind(e.Store)
}

func (e *Env) close() {
	if e.unbind != nil {
		e.unbind()
		e.unbind = nil
	}
	if e.Logger != nil {
		_ = e.Logger.Sync()
	}
}

func (e *Env) bootstrap(ctx context.Context) error {
	if e.bootstrapped {
		return nil
	}
	e.bootstrapped = true
	_, err := e.Session.Bootstrap(ctx)
	return err
}

// enter navigates to page, restoring the stored session first. Gated pages are
// refused when nobody is signed in.
func (e *Env) enter(ctx context.Context, page app.Page) error {
	if err := e.bootstrap(ctx); err != nil {
		return err
	}
	if s := e.Store.Dispatch(app.Navigate{Page: page}); s.Page != page {
		return errNotSignedIn
	}
	return nil
}

func (e *Env) readLine() (string, error) {
	line, err := e.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (e *Env) password(prompt string) (string, error) {
	if e.ReadPassword != nil {
		return e.ReadPassword(prompt)
	}
	if f, ok := e.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.Err, prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.Err)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return e.readLine()
}
