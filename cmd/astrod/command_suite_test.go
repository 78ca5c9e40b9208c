package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/srg/astrod/internal/testutils"
	"github.com/stretchr/testify/suite"
)

// CommandTestSuite runs the CLI in-process against a fresh command tree.
type CommandTestSuite struct {
	suite.Suite
	Text *testutils.TextAsserter
	JSON *testutils.JSONAsserter
}

func (s *CommandTestSuite) SetupTest() {
	s.Text = testutils.NewTextAsserter(s.T(), testutils.WithTrimSpace(true))
	s.JSON = testutils.NewJSONAsserter(s.T())
}

// ExecuteCommand runs astrod with args and returns stdout, stderr and the error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, string, error) {
	return s.ExecuteCommandWithInput("", args...)
}

// ExecuteCommandWithInput is ExecuteCommand with stdin set to input.
func (s *CommandTestSuite) ExecuteCommandWithInput(input string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewBufferString(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// WriteConfig stores a YAML configuration in a temp dir and returns its path.
func (s *CommandTestSuite) WriteConfig(yaml string) string {
	path := filepath.Join(s.T().TempDir(), "astrod.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(yaml), 0o600))
	return path
}
