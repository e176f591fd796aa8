package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/classpulse/classpulse/pkg/models"
)

type fakeStore struct{ pingErr error }

func (s *fakeStore) Ping(context.Context) error                              { return s.pingErr }
func (s *fakeStore) CreateJob(context.Context, string) error                 { return nil }
func (s *fakeStore) HasJob(context.Context, string) (bool, error)            { return false, nil }
func (s *fakeStore) AppendEntry(context.Context, string, models.Entry) error { return nil }
func (s *fakeStore) ReadEntries(context.Context, string) ([]models.Entry, error) {
	return nil, nil
}

type fakeCache struct{ pingErr error }

func (c *fakeCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *fakeCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *fakeCache) Delete(context.Context, string) error                     { return nil }
func (c *fakeCache) Ping(context.Context) error                               { return c.pingErr }
func (c *fakeCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	h := healthHandler(&fakeStore{}, &fakeCache{})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestHealthHandler_StoreDegraded(t *testing.T) {
	h := healthHandler(&fakeStore{pingErr: errors.New("disk gone")}, &fakeCache{})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "DEGRADED")
	assert.Contains(t, rr.Body.String(), `"store":"degraded"`)
}

func TestHealthHandler_CacheDegraded(t *testing.T) {
	h := healthHandler(&fakeStore{}, &fakeCache{pingErr: errors.New("redis gone")})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cache":"degraded"`)
}
