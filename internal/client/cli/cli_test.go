package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cvnova/adapters/event"
	httpAdapter "github.com/khoahotran/cvnova/adapters/http"
	"github.com/khoahotran/cvnova/adapters/identity"
	"github.com/khoahotran/cvnova/adapters/persistence"
	analyticsUC "github.com/khoahotran/cvnova/internal/application/usecase/analytics"
	authUC "github.com/khoahotran/cvnova/internal/application/usecase/auth"
	cvUC "github.com/khoahotran/cvnova/internal/application/usecase/cv"
	prefsUC "github.com/khoahotran/cvnova/internal/application/usecase/preferences"
	shareUC "github.com/khoahotran/cvnova/internal/application/usecase/share"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/pkg/auth"
	"github.com/khoahotran/cvnova/pkg/logger"
)

const prefix = "/make-server-a189b8f6"

func newAPIServer() *httptest.Server {
	log := logger.NewNopLogger()
	gin.SetMode(gin.TestMode)

	store := persistence.NewMemoryStore()
	cvRepo := persistence.NewCVRepo(store, log)
	shareRepo := persistence.NewShareRepo(store)
	counters := persistence.NewCounters(store)
	idp := identity.NewLocalProvider(persistence.NewUserRepo(store), auth.NewJWTService("cli-secret", time.Hour), log)

	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(
			authUC.NewSignUpUseCase(idp, log),
			authUC.NewSignInUseCase(idp, log),
			authUC.NewOAuthURLUseCase(idp),
			log,
		),
		CV: httpAdapter.NewCVHandler(
			cvUC.NewListCVsUseCase(cvRepo, log),
			cvUC.NewCreateCVUseCase(cvRepo, true, log),
			cvUC.NewUpdateCVUseCase(cvRepo, true, log),
			cvUC.NewDeleteCVUseCase(cvRepo, log),
			shareUC.NewShareCVUseCase(cvRepo, shareRepo, counters, "https://cvnova.com", config.ResharePolicyInvalidate, log),
			log,
		),
		Shared: httpAdapter.NewSharedHandler(shareUC.NewGetSharedCVUseCase(
			cvRepo, shareRepo, counters, event.NewInlinePublisher(analyticsUC.NewRecordViewUseCase(counters, log)), log)),
		Preferences: httpAdapter.NewPreferencesHandler(prefsUC.NewPreferencesUseCase(persistence.NewPreferencesRepo(store), log)),
		Analytics:   httpAdapter.NewAnalyticsHandler(analyticsUC.NewGetAnalyticsUseCase(cvRepo, counters, log)),
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{RoutePrefix: prefix, AllowedOrigins: []string{"*"}}, handlers, idp, log)
	return httptest.NewServer(router)
}

type CLITestSuite struct {
	suite.Suite
	server *httptest.Server
	cfg    config.ClientConfig
}

func (s *CLITestSuite) SetupTest() {
	s.server = newAPIServer()
	s.cfg = config.ClientConfig{
		APIURL:        s.server.URL + prefix,
		TokenFile:     filepath.Join(s.T().TempDir(), "session.json"),
		AutosaveDelay: time.Hour,
	}
}

func (s *CLITestSuite) TearDownTest() {
	s.server.Close()
}

func TestCLI(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

// run executes one CLI invocation, the way a shell would, sharing only the token file.
func (s *CLITestSuite) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	env := NewEnv(s.cfg, strings.NewReader(stdin), &out, &errOut)
	env.Logger = logger.NewNopLogger()
	env.Now = func() time.Time { return time.Now().Add(time.Minute) }
	env.ReadPassword = func(string) (string, error) { return "secret1", nil }

	root := NewRootCommand(env)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func lineValue(out, label string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, label); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (s *CLITestSuite) Test_FullSession() {
	out, _, err := s.run("", "signup", "--email", "ana@example.com", "--name", "Ana Martin")
	s.Require().NoError(err)
	s.Contains(out, "signed in as ana@example.com")

	out, _, err = s.run("", "whoami")
	s.Require().NoError(err)
	s.Equal("[AM] Ana Martin <ana@example.com>\n", out)

	out, _, err = s.run("skill add Go\ninfo name Ana Martin\nexp add Dev|ACME|2 ans|APIs\nquit\n", "new", "--name", "Mon CV")
	s.Require().NoError(err)
	id := lineValue(out, "Saved ")
	s.Require().NotEmpty(id)

	out, _, err = s.run("", "list")
	s.Require().NoError(err)
	s.Contains(out, "My CVs (1)")
	s.Contains(out, "Mon CV")
	s.Contains(out, "Modern Stack")

	out, _, err = s.run("", "list", "--search", "zzz")
	s.Require().NoError(err)
	s.Contains(out, "My CVs (0)")

	out, _, err = s.run("template Developer Edge\nsave\n", "edit", id)
	s.Require().NoError(err)
	s.Contains(out, "CV saved")

	out, _, err = s.run("", "share", id)
	s.Require().NoError(err)
	s.Contains(out, "https://cvnova.com/shared/")
	shareID := lineValue(out, "share id:")
	s.Require().NotEmpty(shareID)

	out, _, err = s.run("", "shared", shareID)
	s.Require().NoError(err)
	s.Contains(out, "Mon CV")
	s.Contains(out, "Dev @ ACME")
	s.Contains(out, "views: 1")

	out, _, err = s.run("", "analytics", id)
	s.Require().NoError(err)
	s.Contains(out, "views: 1")
	s.Contains(out, "downloads: 0")

	out, _, err = s.run("", "prefs", "set", "theme=dark", "fontSize=14")
	s.Require().NoError(err)
	s.Contains(out, "theme=dark")
	s.Contains(out, "fontSize=14")
	s.Contains(out, "language=fr")

	out, _, err = s.run("", "delete", id)
	s.Require().NoError(err)
	s.Contains(out, "CV deleted")

	out, _, err = s.run("", "list")
	s.Require().NoError(err)
	s.Contains(out, "My CVs (0)")

	_, _, err = s.run("", "logout")
	s.Require().NoError(err)
	_, _, err = s.run("", "list")
	s.ErrorIs(err, errNotSignedIn)
}

func (s *CLITestSuite) Test_EditorQuitWithoutEditsCreatesNothing() {
	_, _, err := s.run("", "signup", "--email", "ana@example.com", "--name", "Ana")
	s.Require().NoError(err)

	out, _, err := s.run("quit\n", "new")
	s.Require().NoError(err)
	s.NotContains(out, "Saved ")

	out, _, err = s.run("", "list")
	s.Require().NoError(err)
	s.Contains(out, "My CVs (0)")
}

func (s *CLITestSuite) Test_PublicCommands() {
	out, _, err := s.run("", "health")
	s.Require().NoError(err)
	s.True(strings.HasPrefix(out, "OK "))

	out, _, err = s.run("", "templates")
	s.Require().NoError(err)
	s.Contains(out, "Corporate Pro")
	s.Contains(out, "Executive Suite")

	out, _, err = s.run("", "oauth", "github")
	s.Require().NoError(err)
	s.Equal(s.cfg.APIURL+"/auth/oauth/github\n", out)

	_, _, err = s.run("", "shared", "nope")
	s.Error(err)

	_, _, err = s.run("", "whoami")
	s.ErrorIs(err, errNotSignedIn)
}

func (s *CLITestSuite) Test_SignUpValidation() {
	_, errOut, err := s.run("", "signup", "--email", "not-an-email")
	s.Require().Error(err)
	s.Contains(errOut, "email is not a valid email")
	s.Contains(errOut, "name is required")

	_, _, err = s.run("", "new", "--template", "Unknown")
	s.Error(err)
}

func TestEnv_ReadLineHandlesMissingNewline(t *testing.T) {
	env := NewEnv(config.ClientConfig{}, strings.NewReader("first\nlast"), &bytes.Buffer{}, &bytes.Buffer{})
	env.Logger = logger.NewNopLogger()
	env.init(false)

	line, err := env.readLine()
	require.NoError(t, err)
	assert.Equal(t, "first", line)
	line, err = env.readLine()
	require.NoError(t, err)
	assert.Equal(t, "last", line)
	_, err = env.readLine()
	assert.Error(t, err)
}
