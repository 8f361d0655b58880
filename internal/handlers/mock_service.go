package handlers

import (
	"context"
	"net/http"
	"time"

	"valve_timer/internal/models"
	"valve_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTimers struct {
	view    service.TimerView
	views   []service.TimerView
	err     error
	lastID  string
	lastIn  service.TimerInput
	deleted []string
}

func (m *mockTimers) Create(ctx context.Context, in service.TimerInput) (service.TimerView, error) {
	m.lastIn = in
	return m.view, m.err
}
func (m *mockTimers) Update(ctx context.Context, id string, in service.TimerInput) (service.TimerView, error) {
	m.lastID = id
	m.lastIn = in
	return m.view, m.err
}
func (m *mockTimers) Delete(ctx context.Context, id string) error {
	m.lastID = id
	if m.err == nil {
		m.deleted = append(m.deleted, id)
	}
	return m.err
}
func (m *mockTimers) Get(ctx context.Context, id string) (service.TimerView, error) {
	m.lastID = id
	return m.view, m.err
}
func (m *mockTimers) List(ctx context.Context) ([]service.TimerView, error) {
	return m.views, m.err
}

type outputCall struct {
	channel  int
	level    bool
	duration time.Duration
	pulse    bool
}

type mockOutputs struct {
	err   error
	calls []outputCall
}

func (m *mockOutputs) Set(ctx context.Context, channel int, level bool) error {
	m.calls = append(m.calls, outputCall{channel: channel, level: level})
	return m.err
}
func (m *mockOutputs) Pulse(ctx context.Context, channel int, d time.Duration) error {
	m.calls = append(m.calls, outputCall{channel: channel, duration: d, pulse: true})
	return m.err
}

type mockMonitoring struct {
	status service.SystemStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (service.SystemStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp       []models.ActuationEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ActuationEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
