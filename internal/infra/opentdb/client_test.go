package opentdb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient(&http.Client{Transport: rt}, Config{})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestFetchBatchRequestShape(t *testing.T) {
	var seen map[string]string
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		q := r.URL.Query()
		seen = map[string]string{
			"amount":   q.Get("amount"),
			"category": q.Get("category"),
			"type":     q.Get("type"),
		}
		return jsonResponse(http.StatusOK, `{"response_code":0,"results":[]}`), nil
	}))

	_, err := client.FetchBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "10", seen["amount"])
	assert.Equal(t, "11", seen["category"], "movies category")
	assert.Equal(t, "multiple", seen["type"])
}

func TestFetchBatchUnescapesEntities(t *testing.T) {
	payload := `{"response_code":0,"results":[{
		"question":"Who said &quot;I&#039;ll be back&quot;?",
		"correct_answer":"Arnold &amp; co",
		"incorrect_answers":["Tom &lt;Cruise&gt;","Bruce Willis"]
	}]}`
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, payload), nil
	}))

	questions, err := client.FetchBatch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, `Who said "I'll be back"?`, questions[0].Prompt)
	assert.Equal(t, "Arnold & co", questions[0].CorrectAnswer)
	assert.Equal(t, []string{"Tom <Cruise>", "Bruce Willis"}, questions[0].IncorrectAnswers)
}

func TestFetchBatchNonOKStatus(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, ""), nil
	}))

	_, err := client.FetchBatch(context.Background(), 10)
	assert.Error(t, err)
}

func TestFetchBatchNonZeroResponseCode(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"response_code":1,"results":[]}`), nil
	}))

	_, err := client.FetchBatch(context.Background(), 10)
	assert.Error(t, err)
}

func TestFetchBatchMalformedPayload(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	}))

	_, err := client.FetchBatch(context.Background(), 10)
	assert.Error(t, err)
}
