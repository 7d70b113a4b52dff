package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v2"
)

type CommandsSuite struct {
	suite.Suite
	dir      string
	out      *bytes.Buffer
	exitCode int
	exiter   func(int)
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsSuite))
}

func (s *CommandsSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.out = &bytes.Buffer{}
	s.exitCode = 0
	s.exiter = cli.OsExiter
	cli.OsExiter = func(code int) { s.exitCode = code }
}

func (s *CommandsSuite) TearDownTest() {
	cli.OsExiter = s.exiter
}

func (s *CommandsSuite) writeFile(name string, content string) string {
	path := filepath.Join(s.dir, name)
	require.NoError(s.T(), os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *CommandsSuite) run(stdin string, args ...string) error {
	app := NewApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = s.out
	app.ErrWriter = io.Discard
	return app.Run(append([]string{config.DefaultAppName}, args...))
}

func (s *CommandsSuite) TestValidateValidFiles() {
	t := s.T()
	v2 := s.writeFile("v2.yaml", test.ModuleStreamV2())
	v3 := s.writeFile("v3.yaml", test.ModuleStreamV3())

	err := s.run("", "validate", "--strict", v2, v3)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.exitCode)

	lines := strings.Split(strings.TrimSpace(s.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], v2+": modulemd v2 "))
	assert.True(t, strings.HasSuffix(lines[0], " OK"))
	assert.True(t, strings.HasSuffix(lines[1], " OK"))
}

func (s *CommandsSuite) TestValidateFailures() {
	t := s.T()
	mixed := s.writeFile("mixed.yaml", test.Mixed())

	err := s.run("", "validate", mixed, filepath.Join(s.dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, 1, s.exitCode)
	assert.Contains(t, err.Error(), "4 document(s) failed to validate")

	out := s.out.String()
	assert.Contains(t, out, mixed+": modulemd v2 good:1:0 OK")
	assert.Contains(t, out, "No document type specified")
	assert.Contains(t, out, "missing.yaml: FAILED: could not read")
}

func (s *CommandsSuite) TestValidateStdin() {
	t := s.T()
	err := s.run(test.Obsoletes(), "validate", StdinFile)
	assert.NoError(t, err)
	assert.Contains(t, s.out.String(), "-: modulemd-obsoletes v1 OK")
}

func (s *CommandsSuite) TestValidateRequiresFiles() {
	t := s.T()
	err := s.run("", "validate")
	require.Error(t, err)
	assert.Equal(t, 2, s.exitCode)
}

func (s *CommandsSuite) TestReformatToOutput() {
	t := s.T()
	in := s.writeFile("packager.yaml", test.PackagerV3())
	out := filepath.Join(s.dir, "out.yaml")

	require.NoError(t, s.run("", "reformat", "--output", out, in))
	first, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(first), "---\n"))

	s.out.Reset()
	require.NoError(t, s.run("", "reformat", out))
	assert.Equal(t, string(first), s.out.String())
}

func (s *CommandsSuite) TestReformatFailure() {
	t := s.T()
	in := s.writeFile("mixed.yaml", test.Mixed())

	err := s.run("", "reformat", in)
	require.Error(t, err)
	assert.Equal(t, 1, s.exitCode)
	assert.Contains(t, err.Error(), "could not be read")

	err = s.run("", "reformat", in, in)
	require.Error(t, err)
	assert.Equal(t, 2, s.exitCode)
}

func TestDescribeResult(t *testing.T) {
	type TestCase struct {
		Name     string
		Given    api.DocumentResult
		Expected string
	}
	testCases := []TestCase{
		{
			Name:     "valid stream",
			Given:    api.DocumentResult{Document: "modulemd", Version: 2, Valid: true, Stream: &api.Stream{NSVCA: "foo:bar:1"}},
			Expected: "f.yaml: modulemd v2 foo:bar:1 OK",
		},
		{
			Name:     "failure with line",
			Given:    api.DocumentResult{Version: 2, Line: 12, Error: "No document type specified"},
			Expected: "f.yaml: unknown v2 (line 12) FAILED: No document type specified",
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.Expected, describeResult("f.yaml", testCase.Given), testCase.Name)
	}
}

func TestServeStopsOnSignal(t *testing.T) {
	conf := config.Get()
	serverPort, metricsPort := conf.Server.Port, conf.Metrics.Port
	conf.Server.Port, conf.Metrics.Port = 0, 0
	defer func() { conf.Server.Port, conf.Metrics.Port = serverPort, metricsPort }()

	quit := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), quit) }()

	time.Sleep(100 * time.Millisecond)
	quit <- syscall.SIGTERM

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
