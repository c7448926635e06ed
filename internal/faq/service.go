package faq

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vivasaude/portal-api/internal/htmlmsg"
	"github.com/vivasaude/portal-api/internal/observability/metrics"
	"github.com/vivasaude/portal-api/pkg/logging"
)

var greetingRe = regexp.MustCompile(`(?i)\b(oi|ol[aá]|bom dia|boa (tarde|noite))\b`)

// Answer is the outcome of one question.
type Answer struct {
	Reply   string `json:"reply"`
	FlowKey string `json:"flowId,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// Service scores questions against the knowledge base and renders replies.
// cache may be nil.
type Service struct {
	kb      *Knowledge
	cache   *ReplyCache
	metrics *metrics.PortalMetrics
	logger  *logging.Logger
}

// NewService creates the FAQ service. cache and m may be nil.
func NewService(kb *Knowledge, cache *ReplyCache, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{kb: kb, cache: cache, metrics: m, logger: logger.Component("faq")}
}

// Ask answers one question. It never fails toward the user: cache errors
// are logged and the matcher result is served instead.
func (s *Service) Ask(ctx context.Context, text string) Answer {
	if cached, ok := s.cache.Get(ctx, text); ok {
		s.metrics.ObserveFAQ("cache_hit")
		return cached
	}

	ans := s.answer(text)
	s.cache.Set(ctx, text, ans)
	return ans
}

func (s *Service) answer(text string) Answer {
	greeting := ""
	if greetingRe.MatchString(text) {
		greeting = "Oi! "
	}

	flow, ok := s.kb.Match(text)
	if !ok {
		s.metrics.ObserveFAQ("unmatched")
		return Answer{Reply: htmlmsg.Text(greeting + fmt.Sprintf(
			"Desculpa, não consegui identificar o tema de cara. Posso ajudar com: %s. Me diga em poucas palavras o que você precisa, tipo 'minha fatura venceu' ou 'como agendar consulta'.",
			strings.Join(s.kb.Topics(), ", ")))}
	}

	if flow.Guide != nil && len(flow.Guide.Steps) > 0 {
		s.metrics.ObserveFAQ("guide")
		return Answer{
			Reply:   greeting + renderGuide(flow),
			FlowKey: flow.Key,
			Done:    true,
		}
	}

	if qa, ok := matchQA(text, flow); ok {
		s.metrics.ObserveFAQ("qa")
		return Answer{Reply: htmlmsg.Text(greeting + qa.A), FlowKey: flow.Key, Done: true}
	}

	s.metrics.ObserveFAQ("flow_only")
	return Answer{
		Reply: htmlmsg.Text(greeting + fmt.Sprintf(
			"Posso te orientar sobre %s. Se quiser, me pergunte 'como fazer' que eu te passo o passo a passo.", flow.Title)),
		FlowKey: flow.Key,
		Done:    true,
	}
}

func renderGuide(flow *Flow) string {
	return htmlmsg.Render(htmlmsg.Message{
		Title:   flow.Title,
		Intro:   "Claro! Vou te explicar o passo a passo:",
		Steps:   flow.Guide.Steps,
		Notes:   flow.Guide.Notes,
		Contact: flow.Guide.Contact,
	})
}

// matchQA finds the first QA item whose question text appears in the
// user's message.
func matchQA(text string, flow *Flow) (QAItem, bool) {
	q := strings.ToLower(text)
	for _, item := range flow.QA {
		if item.Q != "" && strings.Contains(q, strings.ToLower(item.Q)) {
			return item, true
		}
	}
	return QAItem{}, false
}
