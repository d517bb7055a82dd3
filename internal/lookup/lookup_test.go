package lookup

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("il numero di telefono del responsabile telefono")
	want := []string{"numero", "telefono", "del", "responsabile"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestExpandTokens(t *testing.T) {
	got := ExpandTokens([]string{"telefono", "numero", "referente", "mail", "workshop"})
	want := []string{"phone", "responsabile", "email", "workshop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandTokens = %v, want %v", got, want)
	}
}

func contactFacts() domain.FactTable {
	return domain.FactTable{
		"contacts.responsabile_info_point.name":  "Maria Rossi",
		"contacts.responsabile_info_point.phone": "+39 333 1234567",
		"contacts.secretariat.email":             "segreteria@example.com",
		"contacts.secretariat.phone":             "+39 02 7654321",
	}
}

func TestStructured_ResponsabileName(t *testing.T) {
	got, ok := Structured(contactFacts(), "nome responsabile")
	if !ok {
		t.Fatal("expected a structured answer")
	}
	if !strings.Contains(got, "Maria Rossi") {
		t.Errorf("answer should contain the name, got %q", got)
	}
	if strings.Contains(got, "Telefono responsabile") {
		t.Errorf("phone must not appear without a phone token, got %q", got)
	}
}

func TestStructured_ResponsabileNameAndPhone(t *testing.T) {
	got, ok := Structured(contactFacts(), "numero del responsabile")
	if !ok {
		t.Fatal("expected a structured answer")
	}
	want := "Responsabile info point: Maria Rossi – Telefono responsabile: +39 333 1234567"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStructured_PhoneOnly(t *testing.T) {
	got, ok := Structured(contactFacts(), "che numero di telefono posso chiamare")
	if !ok {
		t.Fatal("expected a structured answer")
	}
	want := "Numero di telefono del responsabile info point Maria Rossi: +39 333 1234567"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStructured_SecretariatEmail(t *testing.T) {
	got, ok := Structured(contactFacts(), "qual e la mail della segreteria")
	if !ok {
		t.Fatal("expected a structured answer")
	}
	if !strings.Contains(got, "Email segreteria: segreteria@example.com") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "Telefono segreteria") {
		t.Errorf("secretariat token should include the phone too, got %q", got)
	}
}

func TestStructured_NoMatch(t *testing.T) {
	if _, ok := Structured(contactFacts(), "programma workshop sala a"); ok {
		t.Error("schedule questions must fall through to semantic search")
	}
}

func TestStructured_MissingRecord(t *testing.T) {
	facts := domain.FactTable{"venue.name": "Centro Congressi"}
	if _, ok := Structured(facts, "telefono responsabile"); ok {
		t.Error("no answer without the referenced record")
	}
}

func TestStructured_EmptyQuery(t *testing.T) {
	if _, ok := Structured(contactFacts(), "   !!!   "); ok {
		t.Error("unmatchable query must not produce an answer")
	}
}

func testDocs() []domain.Document {
	return []domain.Document{
		{
			ID:      "programma",
			Title:   "Programma",
			Summary: "Programma generale del congresso di chirurgia",
			Content: "Sala A: workshop avanzato\n\nSala B: sessione plenaria",
		},
		{
			ID:      "piantina",
			Title:   "Piantina",
			Summary: "Mappa del centro congressi",
			Content: "Aula Magna al piano 1\nArea catering nella hall",
		},
	}
}

func TestDocuments_SummaryMatchWins(t *testing.T) {
	got := Documents(testDocs(), "programma congresso")
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Document.ID != "programma" {
		t.Errorf("wrong document: %s", got[0].Document.ID)
	}
	if got[0].Excerpt != "Programma generale del congresso di chirurgia" {
		t.Errorf("summary excerpt expected, got %q", got[0].Excerpt)
	}
}

func TestDocuments_ContentLineMatch(t *testing.T) {
	got := Documents(testDocs(), "aula magna")
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Document.ID != "piantina" {
		t.Errorf("wrong document: %s", got[0].Document.ID)
	}
	if got[0].Excerpt != "Aula Magna al piano 1" {
		t.Errorf("line excerpt expected, got %q", got[0].Excerpt)
	}
}

func TestDocuments_NoMatch(t *testing.T) {
	if got := Documents(testDocs(), "meteo di domani a roma"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestDocuments_EmptyQuery(t *testing.T) {
	if got := Documents(testDocs(), "   "); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
