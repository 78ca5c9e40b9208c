package main

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CaptureCommandSuite struct {
	CommandTestSuite
}

func TestCaptureCommandSuite(t *testing.T) {
	suite.Run(t, new(CaptureCommandSuite))
}

func (s *CaptureCommandSuite) TestSimulatedCameraCannotCapture() {
	_, stderr, err := s.ExecuteCommand("capture")
	s.Require().Error(err)
	s.Contains(FormatUserError(err), "not supported")
	// the default preset names settings the simulated camera lacks
	s.Contains(stderr, "Capture preset step failed")
}

func (s *CaptureCommandSuite) TestHTTPCaptureAppliesPreset() {
	backend := &cameraBackend{iso: "100"}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	cfg := s.WriteConfig(fmt.Sprintf("driver: http\nhttp:\n  base_url: %s\n  settings: [iso]\n", srv.URL))
	out, stderr, err := s.ExecuteCommand("capture", "--config", cfg,
		"--preset", "viewfinder=0", "--preset", "imagequality=JPEG")
	s.Require().NoError(err)
	s.Text.Assert(out, "Capture complete")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	s.Equal(1, backend.captures)
	// imagequality is unknown to the backend and is skipped
	s.Equal([]string{"viewfinder=0"}, backend.writes)
	s.Contains(stderr, "setting=imagequality")
}

func (s *CaptureCommandSuite) TestMalformedPreset() {
	_, _, err := s.ExecuteCommand("capture", "--preset", "viewfinder")
	s.Require().Error(err)
	s.Contains(FormatUserError(err), "invalid input")
}
