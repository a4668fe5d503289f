package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"challenge-orchestrator/pkgs/task"

	"github.com/stretchr/testify/assert"
)

func testPayload(t *testing.T) *task.Payload {
	t.Helper()
	p, err := task.Build(task.BuildParams{
		TemplateID:    task.TemplateSumOfSales,
		Seed:          42,
		Email:         "student@example.com",
		Secret:        "s3cret",
		Round:         1,
		EvaluationURL: "http://localhost:4000/evaluation/notify",
	})
	assert.NoError(t, err)
	return p
}

func fastClient(maxRetries int) *DeliveryClient {
	c := NewDeliveryClient(2*time.Second, maxRetries)
	c.baseInterval = time.Millisecond
	return c
}

func TestDeliverSuccess(t *testing.T) {
	var got task.Payload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	outcome := fastClient(3).Deliver(ts.URL, testPayload(t))

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.AttemptsMade)
	if assert.NotNil(t, outcome.HTTPStatus) {
		assert.Equal(t, http.StatusOK, *outcome.HTTPStatus)
	}
	assert.Equal(t, "student@example.com", got.Email)
	assert.Equal(t, "sum-of-sales-42", got.Task)
}

func TestDeliverRetriesNetworkFailuresThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			// Drop the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			assert.True(t, ok)
			conn, _, err := hj.Hijack()
			assert.NoError(t, err)
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	outcome := fastClient(3).Deliver(ts.URL, testPayload(t))

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 3, outcome.AttemptsMade)
	if assert.NotNil(t, outcome.HTTPStatus) {
		assert.Equal(t, http.StatusOK, *outcome.HTTPStatus)
	}
}

func TestDeliverDoesNotRetryHTTPErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	outcome := fastClient(3).Deliver(ts.URL, testPayload(t))

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.AttemptsMade)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	if assert.NotNil(t, outcome.HTTPStatus) {
		assert.Equal(t, http.StatusInternalServerError, *outcome.HTTPStatus)
	}
}

func TestDeliverExhaustsRetryCeiling(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listens anymore

	outcome := fastClient(3).Deliver(ts.URL, testPayload(t))

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 3, outcome.AttemptsMade)
	assert.Nil(t, outcome.HTTPStatus)
	assert.NotEmpty(t, outcome.LastError)
}
