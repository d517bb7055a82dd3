package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven/mocks"
)

func toolDocuments() []domain.Document {
	program := domain.Document{
		ID:      programDocumentID,
		Title:   "Programma generale",
		Summary: "Congresso di chirurgia, 12-14 marzo.",
		Content: strings.Join([]string{
			"# Programma",
			"",
			"Venerdì 09:00 Sala Plenaria - Apertura lavori",
			"Venerdì 11:00 Sala S1 - Workshop laparoscopia",
			"",
			"Accreditamento ECM: 6 crediti per i partecipanti.",
			"Registrazione obbligatoria entro il giorno precedente.",
			"",
			"## Sedi",
			"",
			"Contatti della Segreteria organizzativa: 02 1234567.",
			"Orari sportello: 08:30-17:00.",
		}, "\n"),
	}
	floorPlan := domain.Document{
		ID:      floorPlanDocumentID,
		Title:   "Piantina",
		Summary: "Mappa del centro congressi su due piani.",
		Content: "La mappa mostra sale e servizi.",
	}
	return []domain.Document{program, floorPlan}
}

func newToolService(docs []domain.Document) *toolService {
	source := mocks.NewMockDocumentSource(docs, nil)
	return NewTools(source, nil).(*toolService)
}

func TestToolsGeneralInfo(t *testing.T) {
	svc := newToolService(toolDocuments())

	t.Run("default topic returns the summary", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolGeneralInfo, nil)
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if resp.Text != "Congresso di chirurgia, 12-14 marzo." {
			t.Errorf("text = %q, want the document summary", resp.Text)
		}
		if resp.Data["topic"] != "overview" {
			t.Errorf("topic = %v, want overview", resp.Data["topic"])
		}
	})

	t.Run("ecm topic extracts the ECM section", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolGeneralInfo, map[string]any{"topic": "Crediti ECM"})
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !strings.Contains(resp.Text, "6 crediti") {
			t.Errorf("text = %q, want the ECM lines", resp.Text)
		}
		if strings.Contains(resp.Text, "Segreteria") {
			t.Errorf("text = %q, should stop at the next heading", resp.Text)
		}
		if resp.Data["topic"] != "crediti ecm" {
			t.Errorf("topic = %v, want lowercased input", resp.Data["topic"])
		}
	})

	t.Run("segreteria topic extracts the contact section", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolGeneralInfo, map[string]any{"topic": "segreteria"})
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !strings.Contains(resp.Text, "02 1234567") {
			t.Errorf("text = %q, want the secretariat contact", resp.Text)
		}
	})
}

func TestToolsScheduleLookup(t *testing.T) {
	svc := newToolService(toolDocuments())

	t.Run("query filters matching lines", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolScheduleLookup, map[string]any{"query": "sala s1"})
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !strings.Contains(resp.Text, "Workshop laparoscopia") {
			t.Errorf("text = %q, want the S1 session", resp.Text)
		}
		if strings.Contains(resp.Text, "Apertura lavori") {
			t.Errorf("text = %q, should not include other sessions", resp.Text)
		}
	})

	t.Run("no match suggests refining", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolScheduleLookup, map[string]any{"query": "sala z9"})
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !strings.Contains(resp.Text, "Non ho trovato sessioni") {
			t.Errorf("text = %q, want the no-match message", resp.Text)
		}
	})

	t.Run("empty query returns the leading lines", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolScheduleLookup, nil)
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !strings.Contains(resp.Text, "# Programma") {
			t.Errorf("text = %q, want the document head", resp.Text)
		}
	})
}

func TestToolsLocationLookup(t *testing.T) {
	svc := newToolService(toolDocuments())

	cases := []struct {
		place string
		want  string
	}{
		{"dove sono i bagni", "piano terra"},
		{"sala s1", "Sala Workshop S1"},
		{"aula magna", "Aula Magna"},
		{"sessione plenaria", "Aula Magna"},
		{"area catering", "hall principale"},
	}
	for _, tc := range cases {
		t.Run(tc.place, func(t *testing.T) {
			resp, err := svc.Handle(context.Background(), ToolLocationLookup, map[string]any{"place": tc.place})
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if !strings.Contains(resp.Text, tc.want) {
				t.Errorf("text = %q, want it to contain %q", resp.Text, tc.want)
			}
		})
	}

	t.Run("unknown place falls back to the summary", func(t *testing.T) {
		resp, err := svc.Handle(context.Background(), ToolLocationLookup, map[string]any{"place": "terrazza"})
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if resp.Text != "Mappa del centro congressi su due piani." {
			t.Errorf("text = %q, want the floor plan summary", resp.Text)
		}
		if resp.Data["place"] != "terrazza" {
			t.Errorf("place = %v, want terrazza", resp.Data["place"])
		}
	})
}

func TestToolsUnknownToolFallsBack(t *testing.T) {
	svc := newToolService(nil)

	resp, err := svc.Handle(context.Background(), "conference.unknown", nil)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.Tool != "conference.unknown" {
		t.Errorf("tool = %q, want the requested name echoed", resp.Tool)
	}
	if resp.Text != fallbackToolText {
		t.Errorf("text = %q, want the fallback message", resp.Text)
	}
}

func TestToolsMissingDocument(t *testing.T) {
	svc := newToolService(nil)

	resp, err := svc.Handle(context.Background(), ToolGeneralInfo, nil)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.Text != "Informazioni generali non disponibili." {
		t.Errorf("text = %q, want the unavailable message", resp.Text)
	}
}
