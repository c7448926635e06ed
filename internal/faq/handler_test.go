package faq

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerAsk(t *testing.T) {
	h := NewHandler(NewService(testKnowledge(t), nil, nil, nil))

	rec := httptest.NewRecorder()
	body := `{"sessionId":"abc","text":"como agendar consulta?"}`
	h.Ask(rec, httptest.NewRequest(http.MethodPost, "/questions/ask", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var ans Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "agendamento_consultas", ans.FlowKey)
	assert.True(t, ans.Done)
	assert.NotEmpty(t, ans.Reply)
}

func TestHandlerAskValidation(t *testing.T) {
	h := NewHandler(NewService(testKnowledge(t), nil, nil, nil))

	for _, body := range []string{`{"text":"  "}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		h.Ask(rec, httptest.NewRequest(http.MethodPost, "/questions/ask", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}
