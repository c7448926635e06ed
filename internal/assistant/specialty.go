package assistant

import (
	"sort"
	"strings"
)

// specialtySynonyms maps each canonical specialty key to lay variants the
// matcher accepts. Longer variants are tried first so the matched phrase
// removal keeps the reason text clean.
var specialtySynonyms = map[string][]string{
	"cardiologia":       {"cardiologista", "cardiologia", "coracao", "coração", "cardio"},
	"dermatologia":      {"dermatologista", "dermatologia", "pele"},
	"endocrinologia":    {"endocrinologista", "endocrinologia", "tireoide", "diabetes"},
	"gastroenterologia": {"gastroenterologista", "gastroenterologia", "gastro", "estômago", "estomago"},
	"ginecologia":       {"ginecologista", "ginecologia"},
	"neurologia":        {"neurologista", "neurologia", "enxaqueca"},
	"oftalmologia":      {"oftalmologista", "oftalmologia", "olhos", "olho", "vista"},
	"ortopedia":         {"ortopedista", "ortopedia", "fratura", "joelho", "coluna"},
	"pediatria":         {"pediatra", "pediatria"},
	"pneumologia":       {"pneumologista", "pneumologia", "pulmão", "pulmao"},
	"psiquiatria":       {"psiquiatra", "psiquiatria", "ansiedade", "depressão", "depressao"},
	"urologia":          {"urologista", "urologia"},
}

// sieveStopWords are generic medical words removed before the token-by-token
// fallback match.
var sieveStopWords = map[string]struct{}{
	"consulta": {}, "consultar": {}, "medico": {}, "médico": {}, "medica": {}, "médica": {},
	"doutor": {}, "doutora": {}, "dr": {}, "dra": {}, "especialista": {}, "especialidade": {},
	"quero": {}, "preciso": {}, "gostaria": {}, "marcar": {}, "agendar": {}, "agendamento": {},
	"para": {}, "pra": {}, "com": {}, "uma": {}, "um": {},
}

// reasonConnectors are dropped from the edges of the remainder when deriving
// the visit reason.
var reasonConnectors = map[string]struct{}{
	"para": {}, "pra": {}, "por": {}, "pois": {}, "porque": {}, "que": {},
	"quero": {}, "preciso": {}, "gostaria": {}, "de": {}, "uma": {}, "um": {},
	"consulta": {}, "marcar": {}, "agendar": {},
}

const minReasonLength = 3

// MatchSpecialty resolves a canonical specialty key from free text. It first
// tries substring containment against the synonym table, then strips stop
// words and retries token by token. The second return is the phrase that
// matched, for removal from the reason text.
func MatchSpecialty(text string) (specialtyID, matched string, ok bool) {
	norm := normalizeText(text)
	if norm == "" {
		return "", "", false
	}

	for _, canonical := range specialtyOrder {
		for _, variant := range specialtySynonyms[canonical] {
			if strings.Contains(norm, variant) {
				return canonical, variant, true
			}
		}
	}

	// Token sieve: drop generic words, then try partial matches per token.
	for _, token := range strings.Fields(norm) {
		if _, skip := sieveStopWords[token]; skip || len(token) < 4 {
			continue
		}
		for _, canonical := range specialtyOrder {
			for _, variant := range specialtySynonyms[canonical] {
				if strings.Contains(variant, token) || strings.Contains(token, variant) {
					return canonical, token, true
				}
			}
		}
	}
	return "", "", false
}

// ExtractReason derives the visit reason: the message minus the matched
// specialty phrase and edge connector words. Below the minimum length the
// raw message is used instead.
func ExtractReason(text, matchedPhrase string) string {
	norm := normalizeText(text)
	if matchedPhrase != "" {
		norm = strings.ReplaceAll(norm, matchedPhrase, " ")
	}

	tokens := strings.Fields(norm)
	start, end := 0, len(tokens)
	for start < end {
		if _, drop := reasonConnectors[tokens[start]]; !drop {
			break
		}
		start++
	}
	for end > start {
		if _, drop := reasonConnectors[tokens[end-1]]; !drop {
			break
		}
		end--
	}

	reason := strings.Join(tokens[start:end], " ")
	if len(reason) < minReasonLength {
		return strings.TrimSpace(text)
	}
	return reason
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// specialtyOrder keeps matching deterministic across map iteration order.
var specialtyOrder = func() []string {
	keys := make([]string, 0, len(specialtySynonyms))
	for k := range specialtySynonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()
