package e2e

import (
	"bytes"
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration and skips when no server is targeted.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.HTTPAddr == "" || s.Config.JWTSecret == "" {
		s.T().Skip("E2E_HTTP_ADDR and JWT_SECRET are required for end-to-end tests")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseSuite) Token(user chat.Participant) string {
	token, err := auth.NewTokenManager(s.Config.JWTSecret, s.Config.JWTIssuer).GenerateToken(user, time.Minute)
	s.Require().NoError(err)
	return token
}

// Call performs an authenticated JSON request and decodes the response into out when non-nil.
func (s *BaseSuite) Call(ctx context.Context, user chat.Participant, method, path string, body, out any) int {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.Config.HTTPAddr+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.Token(user))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.T().Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		s.T().Logf("RESPONSE:\n%s", raw)
	}
	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

// Live opens the websocket stream of the thread between user and other.
func (s *BaseSuite) Live(user, other chat.Participant) *websocket.Conn {
	url := strings.Replace(s.Config.HTTPAddr, "http", "ws", 1) +
		fmt.Sprintf("/threads/%s/live?access_token=%s", other, s.Token(user))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

// GrpcConn connects to the health endpoint with a logging interceptor.
func (s *BaseSuite) GrpcConn() *grpc.ClientConn {
	conn, err := grpc.NewClient(s.Config.GRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)
			s.T().Logf("GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GRPCAddr)
	return conn
}
