// Package lookup implements the deterministic matching layer that runs before
// semantic search: tokenization with synonym canonicalization, the structured
// fact rules for contact questions, and the keyword document matcher used to
// prefilter candidates for semantic scoring.
package lookup

import (
	"fmt"
	"strings"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/normalizer"
)

// Canonical token concepts produced by synonym expansion.
const (
	conceptPhone        = "phone"
	conceptResponsabile = "responsabile"
	conceptEmail        = "email"
	conceptName         = "name"
	conceptSecretariat  = "secretariat"
)

// synonyms maps each canonical concept to its surface variants. The matcher
// is a pure function over token sets; the data stays independently editable.
var synonyms = map[string][]string{
	conceptPhone:        {"telefono", "numero", "cellulare", "tel", "phone"},
	conceptResponsabile: {"responsabile", "referente", "manager"},
	conceptEmail:        {"email", "mail", "indirizzo"},
	conceptName:         {"nome", "name"},
	conceptSecretariat:  {"segreteria", "segreteria organizzativa", "secretariat"},
}

// canonical is the variant -> concept inverse of synonyms.
var canonical = func() map[string]string {
	m := make(map[string]string)
	for concept, variants := range synonyms {
		for _, v := range variants {
			m[v] = concept
		}
	}
	return m
}()

// Tokenize splits normalized text on whitespace, keeping unique tokens of at
// least three characters in first-seen order.
func Tokenize(normalized string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, token := range strings.Fields(normalized) {
		if len(token) < 3 {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// ExpandTokens canonicalizes tokens through the synonym table, deduplicating
// the result while preserving order.
func ExpandTokens(tokens []string) []string {
	seen := make(map[string]struct{})
	var expanded []string
	for _, token := range tokens {
		if concept, ok := canonical[token]; ok {
			token = concept
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		expanded = append(expanded, token)
	}
	return expanded
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Structured answers contact-style questions directly from the fact table.
// Rules apply in fixed priority order; the first composed message wins.
// Returns false when no rule matches or the referenced record is absent.
func Structured(facts domain.FactTable, query string) (string, bool) {
	normalized := normalizer.ForMatching(query)
	if normalized == "" || len(facts) == 0 {
		return "", false
	}

	tokens := tokenSet(ExpandTokens(Tokenize(normalized)))
	_, wantsPhone := tokens[conceptPhone]

	responsabile := facts.Record("contacts.responsabile_info_point")
	if len(responsabile) > 0 {
		if _, ok := tokens[conceptResponsabile]; ok {
			var parts []string
			if name := responsabile["name"]; name != "" {
				parts = append(parts, fmt.Sprintf("Responsabile info point: %s", name))
			}
			if phone := responsabile["phone"]; phone != "" && wantsPhone {
				parts = append(parts, fmt.Sprintf("Telefono responsabile: %s", phone))
			}
			if len(parts) > 0 {
				return strings.Join(parts, " – "), true
			}
		}

		if wantsPhone {
			if phone := responsabile["phone"]; phone != "" {
				return fmt.Sprintf("Numero di telefono del responsabile info point %s: %s",
					responsabile["name"], phone), true
			}
		}
	}

	_, wantsSecretariat := tokens[conceptSecretariat]
	_, wantsEmail := tokens[conceptEmail]
	if wantsSecretariat || wantsEmail {
		secretariat := facts.Record("contacts.secretariat")
		if len(secretariat) > 0 {
			var parts []string
			if email := secretariat["email"]; email != "" && (wantsEmail || wantsSecretariat) {
				parts = append(parts, fmt.Sprintf("Email segreteria: %s", email))
			}
			if phone := secretariat["phone"]; phone != "" && (wantsPhone || wantsSecretariat) {
				parts = append(parts, fmt.Sprintf("Telefono segreteria: %s", phone))
			}
			if len(parts) > 0 {
				return strings.Join(parts, " – "), true
			}
		}
	}

	return "", false
}

// Documents runs the cheap keyword match over raw documents. Summary matches
// win outright; otherwise the first matching content line (or a substring
// snippet) qualifies a document. The result order follows the input order.
func Documents(docs []domain.Document, query string) []domain.DocumentMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	normalizedQuery := normalizer.ForMatching(query)
	if normalizedQuery == "" {
		normalizedQuery = strings.ToLower(query)
	}
	tokens := ExpandTokens(Tokenize(normalizedQuery))

	var summaryMatches []domain.DocumentMatch
	for i := range docs {
		doc := &docs[i]
		if matches(normalizer.ForMatching(doc.Summary), tokens, normalizedQuery) {
			summaryMatches = append(summaryMatches, domain.DocumentMatch{
				Document: doc,
				Excerpt:  strings.TrimSpace(doc.Summary),
			})
		}
	}
	if len(summaryMatches) > 0 {
		return summaryMatches
	}

	var contentMatches []domain.DocumentMatch
	for i := range docs {
		doc := &docs[i]
		if doc.Content == "" {
			continue
		}
		if match, ok := matchContent(doc, tokens, normalizedQuery); ok {
			contentMatches = append(contentMatches, match)
		}
	}
	return contentMatches
}

// matches reports whether every token appears in the haystack; with no
// tokens it falls back to a substring check on the whole query.
func matches(haystack string, tokens []string, needle string) bool {
	if haystack == "" {
		return false
	}
	if len(tokens) == 0 {
		return strings.Contains(haystack, needle)
	}
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func matchContent(doc *domain.Document, tokens []string, normalizedQuery string) (domain.DocumentMatch, bool) {
	for _, line := range splitLines(doc.Content) {
		if matches(normalizer.ForMatching(line), tokens, normalizedQuery) {
			return domain.DocumentMatch{Document: doc, Excerpt: strings.TrimSpace(line)}, true
		}
	}

	// Last resort: substring scan over the normalized content, with a
	// snippet cut from the raw content around the hit.
	normalizedContent := normalizer.ForMatching(doc.Content)
	position := strings.Index(normalizedContent, normalizedQuery)
	if position < 0 {
		return domain.DocumentMatch{}, false
	}

	runes := []rune(doc.Content)
	start := position - 80
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := start + 200
	if end > len(runes) {
		end = len(runes)
	}
	return domain.DocumentMatch{
		Document: doc,
		Excerpt:  strings.TrimSpace(string(runes[start:end])),
	}, true
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
