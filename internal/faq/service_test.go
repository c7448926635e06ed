package faq

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKnowledge(t *testing.T) *Knowledge {
	t.Helper()
	kb, err := Load("")
	require.NoError(t, err)
	return kb
}

func TestAskRendersGuide(t *testing.T) {
	svc := NewService(testKnowledge(t), nil, nil, nil)

	ans := svc.Ask(context.Background(), "como agendar uma consulta?")

	assert.Equal(t, "agendamento_consultas", ans.FlowKey)
	assert.True(t, ans.Done)
	assert.Contains(t, ans.Reply, "Agendamento de consultas")
	assert.Contains(t, ans.Reply, "<ol>")
	assert.Contains(t, ans.Reply, "protocolo")
	assert.Contains(t, ans.Reply, "Central de Atendimento")
}

func TestAskPrependsGreeting(t *testing.T) {
	svc := NewService(testKnowledge(t), nil, nil, nil)

	ans := svc.Ask(context.Background(), "oi, como agendar consulta?")
	assert.True(t, strings.HasPrefix(ans.Reply, "Oi! "))

	ans = svc.Ask(context.Background(), "como agendar consulta?")
	assert.False(t, strings.HasPrefix(ans.Reply, "Oi! "))
}

func TestAskQABankWhenFlowHasNoGuide(t *testing.T) {
	svc := NewService(testKnowledge(t), nil, nil, nil)

	ans := svc.Ask(context.Background(), "rede credenciada: como consultar?")

	assert.Equal(t, "rede_credenciada", ans.FlowKey)
	assert.True(t, ans.Done)
	assert.Contains(t, ans.Reply, "Rede de Atendimento")
}

func TestAskFlowWithoutGuideOrQAMatch(t *testing.T) {
	svc := NewService(testKnowledge(t), nil, nil, nil)

	ans := svc.Ask(context.Background(), "rede credenciada")

	assert.Equal(t, "rede_credenciada", ans.FlowKey)
	assert.Contains(t, ans.Reply, "Posso te orientar sobre")
}

func TestAskUnmatchedSuggestsTopics(t *testing.T) {
	svc := NewService(testKnowledge(t), nil, nil, nil)

	ans := svc.Ask(context.Background(), "qual a previsão do tempo?")

	assert.Empty(t, ans.FlowKey)
	assert.False(t, ans.Done)
	assert.Contains(t, ans.Reply, "Posso ajudar com")
	assert.Contains(t, ans.Reply, "Agendamento de consultas")
}

func TestAskUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewReplyCache(rdb, time.Minute, nil)
	svc := NewService(testKnowledge(t), cache, nil, nil)

	first := svc.Ask(context.Background(), "como agendar consulta?")
	require.Equal(t, 1, len(mr.Keys()))

	// Poison the matcher path: a second identical question must come from
	// the cache rather than a fresh match.
	svc.kb = &Knowledge{}
	second := svc.Ask(context.Background(), "como agendar consulta?")
	assert.Equal(t, first, second)
}

func TestReplyCacheTTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewReplyCache(rdb, time.Minute, nil)

	cache.Set(context.Background(), "pergunta", Answer{Reply: "resposta"})
	_, ok := cache.Get(context.Background(), "pergunta")
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(context.Background(), "pergunta")
	assert.False(t, ok)
}

func TestReplyCacheNilIsNoop(t *testing.T) {
	var cache *ReplyCache
	cache.Set(context.Background(), "q", Answer{Reply: "r"})
	_, ok := cache.Get(context.Background(), "q")
	assert.False(t, ok)
}

func TestReplyCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, cacheKey("Como Agendar?  "), cacheKey("como agendar?"))
	assert.NotEqual(t, cacheKey("como agendar?"), cacheKey("como cancelar?"))
}
