package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// CancellationWords stop the current process when found as whole words
// anywhere in a message.
var CancellationWords = []string{"cancelar", "cancelo", "ya no quiero", "ya no", "mejor no", "detener", "no gracias"}

// Button ids sent with yes/no prompts.
const (
	ButtonYes = "btn_si"
	ButtonNo  = "btn_no"
)

var (
	yesWords   = map[string]bool{"claro": true, "ok": true, "okey": true, "okay": true, "dale": true, "listo": true, "acepto": true, "correcto": true, "perfecto": true, "va": true, "yes": true}
	yesPhrases = []string{"de acuerdo", "por supuesto", "esta bien", "me parece bien"}
	noWords    = map[string]bool{"no": true, "nop": true, "nope": true, "negativo": true, "nunca": true}
	siPattern  = regexp.MustCompile(`^s+i+$`)
)

// Matcher finds FAQ topics, cancellations and yes/no answers in free text.
type Matcher struct {
	cancel []string
}

// NewMatcher creates a matcher using the standard cancellation list.
func NewMatcher() *Matcher {
	return &Matcher{cancel: CancellationWords}
}

// IsCancellation reports whether text contains a cancellation phrase on
// word boundaries: "ya no" matches "ya no quiero" but not "Playa Norte".
func (m *Matcher) IsCancellation(text string) bool {
	ws := words(text)
	for _, phrase := range m.cancel {
		if containsWords(ws, words(phrase)) {
			return true
		}
	}
	return false
}

// Topics returns every FAQ topic whose keywords occur in text, in
// configuration order.
func (m *Matcher) Topics(faq models.FAQ, text string) []string {
	var topics []string
	for _, entry := range faq.Keywords {
		if containsAny(text, entry.Value) {
			topics = append(topics, entry.Key)
		}
	}
	return topics
}

// Answer returns the first matching FAQ topic that has an answer. Inside a
// session the price and stock answers talk about the product being sold.
func (m *Matcher) Answer(snap *catalog.Snapshot, text string, session *models.Session) (topic, answer string, ok bool) {
	for _, topic := range m.Topics(snap.FAQ, text) {
		if answer, ok := m.TopicAnswer(snap, topic, session); ok {
			return topic, answer, true
		}
	}
	return "", "", false
}

// TopicAnswer renders the answer for a known topic.
func (m *Matcher) TopicAnswer(snap *catalog.Snapshot, topic string, session *models.Session) (string, bool) {
	if session != nil && session.ProductName != "" {
		switch topic {
		case "precio":
			return fmt.Sprintf("¡Claro! El precio de tu pedido (*%s*) es de *%s*, con envío gratis. 🚚", session.ProductName, formatSoles(session.ProductPrice)), true
		case "stock":
			return fmt.Sprintf("¡Sí, claro! Aún tenemos unidades del *%s*. ✨ ¿Iniciamos tu pedido?", session.ProductName), true
		}
	}
	return snap.FAQResponse(topic)
}

// IsYes reports an unambiguous affirmative answer.
func (m *Matcher) IsYes(text string) bool {
	return text == ButtonYes || (affirmative(text) && !negative(text))
}

// IsNo reports an unambiguous negative answer.
func (m *Matcher) IsNo(text string) bool {
	return text == ButtonNo || (negative(text) && !affirmative(text))
}

func affirmative(text string) bool {
	for _, w := range words(text) {
		if siPattern.MatchString(w) || yesWords[w] {
			return true
		}
	}
	n := normalize(text)
	for _, p := range yesPhrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}

func negative(text string) bool {
	for _, w := range words(text) {
		if noWords[w] {
			return true
		}
	}
	return false
}

// HasWord reports whether any of the given words appears as a whole word.
func (m *Matcher) HasWord(text string, candidates ...string) bool {
	ws := words(text)
	for _, c := range candidates {
		c = normalize(c)
		for _, w := range ws {
			if w == c {
				return true
			}
		}
	}
	return false
}
