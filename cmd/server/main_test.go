package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nutricalc/internal/config"
	"nutricalc/internal/server"
)

type stubServer struct {
	startErr error
	stopErr  error
	block    bool

	startCalled bool
	stopCalled  bool

	started chan struct{}
	release chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	return &stubServer{
		startErr: startErr,
		stopErr:  stopErr,
		block:    block,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.started)
	if s.block {
		<-s.release
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.block {
		close(s.release)
	}
	return s.stopErr
}

// harness replaces every seam used by run and records what reached them.
type harness struct {
	mockDB       *gorm.DB
	configuredDB *gorm.DB

	mockCalls  int
	configured []config.DatabaseConfig
	built      []server.Config

	server   *stubServer
	shutdown chan os.Signal
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()

	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig
	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})

	h := &harness{
		mockDB:       &gorm.DB{},
		configuredDB: &gorm.DB{},
		server:       newStubServer(http.ErrServerClosed, nil, true),
		shutdown:     make(chan os.Signal, 1),
	}

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		h.mockCalls++
		return h.mockDB, nil
	}
	configureDatabase = func(dbCfg config.DatabaseConfig) (*gorm.DB, error) {
		h.configured = append(h.configured, dbCfg)
		return h.configuredDB, nil
	}
	newServerFunc = func(c server.Config) (serverLifecycle, error) {
		h.built = append(h.built, c)
		return h.server, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return h.shutdown, func() {}
	}
	return h
}

// stopAfterStart delivers SIGTERM once the stub server is running.
func (h *harness) stopAfterStart() {
	go func() {
		<-h.server.started
		h.shutdown <- syscall.SIGTERM
	}()
}

func TestRunSelectsDatabase(t *testing.T) {
	tests := []struct {
		name          string
		database      config.DatabaseConfig
		wantMock      bool
		wantForwarded string
	}{
		{"mock flag wins over url", config.DatabaseConfig{URL: "postgres://db/app", UseMock: true}, true, ""},
		{"empty url", config.DatabaseConfig{}, true, ""},
		{"blank url", config.DatabaseConfig{URL: "   "}, true, ""},
		{"configured url", config.DatabaseConfig{URL: "postgres://db/app", MaxOpenConns: 7}, false, "postgres://db/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, config.Config{
				Server:   config.ServerConfig{Addr: ":0"},
				Database: tt.database,
				Logging:  config.LoggingConfig{Level: "info"},
			})
			h.stopAfterStart()

			require.Equal(t, 0, run(context.Background()))
			require.Len(t, h.built, 1)

			if tt.wantMock {
				assert.Equal(t, 1, h.mockCalls)
				assert.Empty(t, h.configured)
				assert.Same(t, h.mockDB, h.built[0].Database)
				return
			}
			assert.Zero(t, h.mockCalls)
			require.Len(t, h.configured, 1)
			assert.Equal(t, tt.wantForwarded, h.configured[0].URL)
			assert.Equal(t, 7, h.configured[0].MaxOpenConns)
			assert.Same(t, h.configuredDB, h.built[0].Database)
		})
	}
}

func TestRunForwardsServerSettings(t *testing.T) {
	h := newHarness(t, config.Config{
		Server:   config.ServerConfig{Addr: ":9090"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Auth: config.AuthConfig{
			Session: config.SessionConfig{
				Lifetime:     90 * time.Minute,
				CookieName:   "nutricalc_test",
				CookieDomain: "example.com",
				CookieSecure: true,
			},
			RateLimit: config.RateLimitConfig{PerSecond: 2, Burst: 3},
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
	})
	h.stopAfterStart()

	require.Equal(t, 0, run(context.Background()))
	require.Len(t, h.built, 1)

	built := h.built[0]
	assert.Equal(t, ":9090", built.Addr)
	assert.Equal(t, server.SessionConfig{
		Lifetime:     90 * time.Minute,
		CookieName:   "nutricalc_test",
		CookieDomain: "example.com",
		CookieSecure: true,
	}, built.Session)
	assert.Equal(t, server.RateLimitConfig{PerSecond: 2, Burst: 3}, built.RateLimit)
	assert.Equal(t, []string{"https://app.example.com"}, built.CORS.AllowedOrigins)
	assert.True(t, h.server.startCalled)
	assert.True(t, h.server.stopCalled)
}

func TestRunExitCodes(t *testing.T) {
	t.Run("server start fails", func(t *testing.T) {
		h := newHarness(t, config.Config{Database: config.DatabaseConfig{UseMock: true}})
		h.server = newStubServer(errors.New("listener failure"), nil, false)

		assert.Equal(t, 1, run(context.Background()))
		assert.False(t, h.server.stopCalled, "stop is not called after a start error")
	})

	t.Run("server closes on its own", func(t *testing.T) {
		h := newHarness(t, config.Config{Database: config.DatabaseConfig{UseMock: true}})
		h.server = newStubServer(http.ErrServerClosed, nil, false)

		assert.Equal(t, 0, run(context.Background()))
	})

	t.Run("graceful shutdown fails", func(t *testing.T) {
		h := newHarness(t, config.Config{Database: config.DatabaseConfig{UseMock: true}})
		h.server = newStubServer(http.ErrServerClosed, errors.New("deadline exceeded"), true)
		h.stopAfterStart()

		assert.Equal(t, 1, run(context.Background()))
	})

	t.Run("database configuration fails", func(t *testing.T) {
		h := newHarness(t, config.Config{Database: config.DatabaseConfig{URL: "postgres://db/app"}})
		configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
			return nil, errors.New("db connection refused")
		}

		assert.Equal(t, 1, run(context.Background()))
		assert.Empty(t, h.built)
	})

	t.Run("server cannot be built", func(t *testing.T) {
		newHarness(t, config.Config{Database: config.DatabaseConfig{UseMock: true}})
		newServerFunc = func(server.Config) (serverLifecycle, error) {
			return nil, errors.New("refusing to build")
		}

		assert.Equal(t, 1, run(context.Background()))
	})

	t.Run("invalid log level", func(t *testing.T) {
		h := newHarness(t, config.Config{Logging: config.LoggingConfig{Level: "loud"}})
		setLogLevelFunc = func(string) error { return errors.New("invalid level") }

		assert.Equal(t, 1, run(context.Background()))
		assert.Zero(t, h.mockCalls)
	})

	t.Run("configuration fails", func(t *testing.T) {
		h := newHarness(t, config.Config{})
		loadConfigFunc = func() (config.Config, error) { return config.Config{}, errors.New("bad env") }

		assert.Equal(t, 1, run(context.Background()))
		assert.Zero(t, h.mockCalls)
	})
}
