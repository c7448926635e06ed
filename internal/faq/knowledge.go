// Package faq answers free-form questions by routing them to a flow from a
// static knowledge base. Unlike the booking assistant it keeps no session
// state: every question is scored and answered on its own.
package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

//go:embed flows.json
var defaultFlows []byte

// Guide is the step-by-step answer of a flow.
type Guide struct {
	Steps   []string `json:"steps"`
	Notes   []string `json:"notes,omitempty"`
	Contact string   `json:"contact,omitempty"`
}

// QAItem is one question/answer pair of a flow's fallback bank.
type QAItem struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Flow is one routable topic of the knowledge base.
type Flow struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Intents  []string `json:"intents,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
	Guide    *Guide   `json:"guide,omitempty"`
	QA       []QAItem `json:"qa,omitempty"`

	compiled []*regexp.Regexp
}

// Knowledge is the loaded, normalized flow set.
type Knowledge struct {
	items []Flow
}

// Load reads the knowledge base from path, or from the embedded default
// when path is empty. The file is either a JSON array of flows or an
// object with an "items" array.
func Load(path string) (*Knowledge, error) {
	raw := defaultFlows
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("faq: read flows file: %w", err)
		}
		raw = b
	}
	return parse(raw)
}

func parse(raw []byte) (*Knowledge, error) {
	var items []Flow
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Items []Flow `json:"items"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("faq: parse flows: %w", err)
		}
		items = wrapped.Items
	}

	kept := make([]Flow, 0, len(items))
	for _, it := range items {
		if it.Key == "" {
			continue
		}
		for _, p := range it.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				// A broken pattern disables itself, not the flow.
				continue
			}
			it.compiled = append(it.compiled, re)
		}
		kept = append(kept, it)
	}
	return &Knowledge{items: kept}, nil
}

// All returns every loaded flow.
func (k *Knowledge) All() []Flow {
	return k.items
}

// Topics returns up to 12 flow titles for the "can't identify the topic"
// suggestion.
func (k *Knowledge) Topics() []string {
	topics := make([]string, 0, len(k.items))
	for _, it := range k.items {
		title := it.Title
		if title == "" {
			title = it.Key
		}
		topics = append(topics, title)
		if len(topics) == 12 {
			break
		}
	}
	return topics
}

// ByKey returns the flow with the given key.
func (k *Knowledge) ByKey(key string) (*Flow, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i := range k.items {
		if strings.ToLower(k.items[i].Key) == key {
			return &k.items[i], true
		}
	}
	return nil, false
}

// Match routes a question to a flow: intent containment first, then the
// flow's regex patterns, then title containment.
func (k *Knowledge) Match(text string) (*Flow, bool) {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return nil, false
	}

	for i := range k.items {
		for _, intent := range k.items[i].Intents {
			if intent != "" && strings.Contains(q, strings.ToLower(intent)) {
				return &k.items[i], true
			}
		}
	}
	for i := range k.items {
		for _, re := range k.items[i].compiled {
			if re.MatchString(q) {
				return &k.items[i], true
			}
		}
	}
	for i := range k.items {
		title := strings.ToLower(k.items[i].Title)
		if title != "" && strings.Contains(q, title) {
			return &k.items[i], true
		}
	}
	return nil, false
}
