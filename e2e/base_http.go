package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite loads the environment configuration and wraps the plain HTTP
// calls the scenarios are built from. The suite talks to an already running
// server; it never boots one itself.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping e2e suite")
	}
	s.client = &http.Client{Timeout: s.Config.Timeout}
}

// Call performs one JSON request as the given user and decodes the response
// body into out when out is non-nil. It returns the HTTP status code.
func (s *BaseHTTPSuite) Call(method, path, userID string, body, out any) int {
	s.T().Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		if s.Config.DebugJSON {
			s.T().Logf(">> %s %s %s", method, path, encoded)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path), reader)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		request.Header.Set("X-User-ID", userID)
	}

	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer func() { _ = response.Body.Close() }()

	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		s.T().Logf("<< %d %s", response.StatusCode, raw)
	}
	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}
