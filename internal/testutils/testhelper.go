package testutils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestHelper bundles the test handle with a logger whose output is captured.
type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
	Output *bytes.Buffer
}

// NewTestHelper creates a helper with a debug-level logger writing into Output.
func NewTestHelper(t *testing.T) *TestHelper {
	out := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return &TestHelper{
		T:      t,
		Logger: logger,
		Output: out,
	}
}

// Logs returns everything logged so far.
func (h *TestHelper) Logs() string {
	return h.Output.String()
}
