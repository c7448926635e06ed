package exams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(ext Extractor, cat catalog) *Handler {
	return NewHandler(NewService(ext, cat, nil), nil)
}

func TestHandlerAuthorize(t *testing.T) {
	cat := &fakeCatalog{exams: map[string]*Exam{
		"hemograma": {ID: "e1", Name: "Hemograma", Audit: false},
	}}
	ext := &fakeExtractor{out: Extraction{
		Patient:    Patient{Name: "Maria Silva", BirthDate: "10/05/1990"},
		Procedures: []Procedure{{Name: "Hemograma"}},
	}}
	h := newTestHandler(ext, cat)

	rec := httptest.NewRecorder()
	body := `{"documentText":"Paciente: Maria Silva..."}`
	h.Authorize(rec, httptest.NewRequest(http.MethodPost, "/exams/authorize", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res AuthorizeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Procedures, 1)
	assert.Equal(t, DecisionAuthorized, res.Procedures[0].Decision)
	assert.NotEmpty(t, res.Procedures[0].Protocol)
}

func TestHandlerAuthorizeValidation(t *testing.T) {
	h := newTestHandler(&fakeExtractor{}, &fakeCatalog{})

	for _, body := range []string{`{"documentText":"  "}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		h.Authorize(rec, httptest.NewRequest(http.MethodPost, "/exams/authorize", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestHandlerAuthorizeUpstreamFailure(t *testing.T) {
	h := newTestHandler(&fakeExtractor{err: context.DeadlineExceeded}, &fakeCatalog{})

	rec := httptest.NewRecorder()
	h.Authorize(rec, httptest.NewRequest(http.MethodPost, "/exams/authorize", strings.NewReader(`{"documentText":"laudo"}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerAuthorizations(t *testing.T) {
	cat := &fakeCatalog{listed: []AuthorizationStatus{{Protocol: "2026000001", Status: StatusApproved}}}
	h := newTestHandler(&fakeExtractor{}, cat)

	rec := httptest.NewRecorder()
	h.Authorizations(rec, httptest.NewRequest(http.MethodGet, "/exams/authorizations?name=Maria+Silva&birthDate=10/05/1990", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []AuthorizationStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
}

func TestHandlerAuthorizationsValidation(t *testing.T) {
	h := newTestHandler(&fakeExtractor{}, &fakeCatalog{})

	for _, target := range []string{
		"/exams/authorizations",
		"/exams/authorizations?name=Maria",
		"/exams/authorizations?birthDate=10/05/1990",
		"/exams/authorizations?name=Maria&birthDate=ontem",
	} {
		rec := httptest.NewRecorder()
		h.Authorizations(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %q", target)
	}
}

func TestHandlerAuthorizationsEmptyIsJSONArray(t *testing.T) {
	h := newTestHandler(&fakeExtractor{}, &fakeCatalog{})

	rec := httptest.NewRecorder()
	h.Authorizations(rec, httptest.NewRequest(http.MethodGet, "/exams/authorizations?name=Maria&birthDate=1990-05-10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
