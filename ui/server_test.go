package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/gift/parser"
	"github.com/dhamidi/giftlint/store"
	"github.com/dhamidi/giftlint/store/inmem"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(diagnose.New(parser.New(), diagnose.WithWorkers(1)), inmem.NewReportsRepository())
	require.NoError(t, err)
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestCheckAndFetch(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/api/check?name=quiz.gift", "Q0 {T}\n\nQ1 ~ A : B\n")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rec store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "quiz.gift", rec.Report.File)
	assert.Len(t, rec.Report.Diagnostics, 2)
	assert.Equal(t, "/api/reports/"+rec.ID.String(), w.Header().Get("Location"))

	w = do(s, http.MethodGet, "/api/reports/"+rec.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, rec.ID, got.ID)

	w = do(s, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = do(s, http.MethodDelete, "/api/reports/"+rec.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, "/api/reports/"+rec.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIErrors(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(s, http.MethodGet, "/api/reports/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodGet, "/api/reports/6f1c1f6e-3e59-4b6c-9a39-2a1b0b7a2d11", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), store.ErrNotFound.Error())

	w = do(s, http.MethodPut, "/api/check", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestIndexAndForm(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")

	form := url.Values{"name": {"form.gift"}, "text": {"Q1 : x"}}
	req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "form.gift")
	assert.Contains(t, body, "1:4")
	assert.Contains(t, body, "History")
}

func TestCheckBodyErrors(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/api/check", strings.Repeat("a", MaxDocumentSize+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/check", iotest.ErrReader(errors.New("connection reset")))
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "connection reset")
}

func TestCheckOffsetsCountByteOrderMark(t *testing.T) {
	s := newTestServer(t)
	body := "\xef\xbb\xbfQ1 : x\r\n"

	w := do(s, http.MethodPost, "/api/check", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.Report.Diagnostics, 1)
	assert.Equal(t, 6, rec.Report.Diagnostics[0].Span.Start.Offset)
	assert.Equal(t, byte(':'), body[6])
}
