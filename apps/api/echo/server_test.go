package echoapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/courseware/core"
)

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}
func (discardLogger) Fatal(string, ...interface{}) {}

func TestServer_signalShutdown(t *testing.T) {
	s := &Server{shutdown: make(chan os.Signal, 1)}
	handle := newAppHTTPErrorHandler(discardLogger{}, nil, s.signalShutdown)
	e := echo.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ { // more shutdown errors than the channel buffers
			rec := httptest.NewRecorder()
			ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			handle(errors.Wrap(core.NewShutdownError("integrity issue"), "saving course"), ctx)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("error handler blocked on a pending shutdown signal")
	}

	assert.Equal(t, syscall.SIGTERM, <-s.shutdown)
	select {
	case sig := <-s.shutdown:
		t.Fatalf("unexpected second signal %v", sig)
	default:
	}
}
