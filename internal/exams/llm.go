package exams

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// maxDocumentChars bounds the text sent to the model so a large document
// cannot blow the token budget.
const maxDocumentChars = 15000

var extractionPrompt = strings.Join([]string{
	"Você é um extrator médico especializado.",
	"TAREFA: Extrair APENAS procedimentos/exames médicos, nome completo do paciente e data de nascimento (quando disponível).",
	`FORMATO DE RESPOSTA: JSON exato no formato: {"patient": {"name": "string|null", "birthDate": "AAAA-MM-DD|null"}, "procedures": [{"name": "string", "qty": number}]}`,
	"REGRAS:",
	"- Extrair apenas nomes de procedimentos/exames claramente visíveis",
	"- Nome do paciente se estiver presente",
	"- birthDate: aceitar formatos DD/MM/AAAA ou AAAA-MM-DD e converter para AAAA-MM-DD",
	"- Não inventar informações",
	"- Ignorar outras informações médicas",
	"- Retornar APENAS o JSON, sem explicações",
}, "\n")

// Extraction is the structured content pulled out of a referral document.
type Extraction struct {
	Patient    Patient     `json:"patient"`
	Procedures []Procedure `json:"procedures"`
}

// Extractor turns free document text into an Extraction.
type Extractor interface {
	Extract(ctx context.Context, documentText string) (Extraction, error)
}

// OpenAIExtractor implements Extractor over the chat completions API.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates the extractor. model defaults to gpt-4o-mini.
func NewOpenAIExtractor(apiKey, model string) *OpenAIExtractor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIExtractor{client: openai.NewClient(apiKey), model: model}
}

// Extract sends the document text with the strict-JSON prompt and parses
// the reply.
func (e *OpenAIExtractor) Extract(ctx context.Context, documentText string) (Extraction, error) {
	text := strings.TrimSpace(documentText)
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars] + "..."
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Texto extraído do documento médico:\n\n" + text},
		},
		MaxTokens:   500,
		Temperature: 0,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("exams: extraction request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Extraction{}, fmt.Errorf("exams: extraction returned no choices")
	}

	return parseExtraction(resp.Choices[0].Message.Content), nil
}

// parseExtraction tolerates markdown code fences and malformed JSON; the
// worst case is an empty procedure list, which downstream treats as
// "nothing to authorize".
func parseExtraction(raw string) Extraction {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var out Extraction
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return Extraction{}
	}
	return out
}
