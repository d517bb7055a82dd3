package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
)

// Ensure toolService implements ToolService
var _ driving.ToolService = (*toolService)(nil)

// Tool names the realtime agent may invoke.
const (
	ToolGeneralInfo    = "conference.general_info"
	ToolScheduleLookup = "conference.schedule_lookup"
	ToolLocationLookup = "conference.location_lookup"
)

// Knowledge documents the tools draw from.
const (
	programDocumentID   = "programma-generale-chirurgia"
	floorPlanDocumentID = "piantina-centro-congressi-demo"
)

const fallbackToolText = "Spiacente, non ho trovato informazioni per la tua richiesta."

// toolService answers realtime tool calls from the knowledge documents.
// Unknown tools get a polite fallback, never an error.
type toolService struct {
	source driven.DocumentSource
	logger *slog.Logger
}

// NewTools creates a new ToolService backed by the document source.
func NewTools(source driven.DocumentSource, logger *slog.Logger) driving.ToolService {
	if logger == nil {
		logger = slog.Default()
	}
	return &toolService{source: source, logger: logger}
}

func (s *toolService) Handle(ctx context.Context, toolName string, payload map[string]any) (*domain.ToolResponse, error) {
	switch toolName {
	case ToolGeneralInfo:
		return s.generalInfo(ctx, payload)
	case ToolScheduleLookup:
		return s.scheduleLookup(ctx, payload)
	case ToolLocationLookup:
		return s.locationLookup(ctx, payload)
	default:
		s.logger.Debug("unknown tool requested", "tool", toolName)
		return &domain.ToolResponse{Tool: toolName, Text: fallbackToolText}, nil
	}
}

func (s *toolService) generalInfo(ctx context.Context, payload map[string]any) (*domain.ToolResponse, error) {
	doc, err := s.findDocument(ctx, programDocumentID)
	if err != nil {
		return nil, err
	}

	topic := strings.ToLower(payloadString(payload, "topic"))

	var text string
	switch {
	case strings.Contains(topic, "ecm"):
		text = extractSection(doc.Content, "ECM")
	case strings.Contains(topic, "contatti"), strings.Contains(topic, "segreteria"):
		text = extractSection(doc.Content, "Segreteria")
	case doc.Summary != "":
		text = doc.Summary
	default:
		text = "Informazioni generali non disponibili."
	}

	responseTopic := topic
	if responseTopic == "" {
		responseTopic = "overview"
	}
	return &domain.ToolResponse{
		Tool: ToolGeneralInfo,
		Text: text,
		Data: map[string]any{"topic": responseTopic},
	}, nil
}

func (s *toolService) scheduleLookup(ctx context.Context, payload map[string]any) (*domain.ToolResponse, error) {
	doc, err := s.findDocument(ctx, programDocumentID)
	if err != nil {
		return nil, err
	}

	target := payloadString(payload, "query")

	var lines []string
	for _, line := range splitLines(doc.Content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if target != "" {
		needle := strings.ToLower(target)
		filtered := lines[:0]
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), needle) {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	} else if len(lines) > 20 {
		lines = lines[:20]
	}

	text := "Non ho trovato sessioni corrispondenti. Prova a specificare giorno o sala."
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	return &domain.ToolResponse{Tool: ToolScheduleLookup, Text: text}, nil
}

func (s *toolService) locationLookup(ctx context.Context, payload map[string]any) (*domain.ToolResponse, error) {
	doc, err := s.findDocument(ctx, floorPlanDocumentID)
	if err != nil {
		return nil, err
	}

	place := strings.ToLower(payloadString(payload, "place"))

	var text string
	switch {
	case strings.Contains(place, "bagni"):
		text = "I bagni sono al piano terra dietro l’area registrazione e al piano 1 a destra uscendo dagli ascensori."
	case strings.Contains(place, "sala s1"):
		text = "La Sala Workshop S1 è al piano 1, in fondo al corridoio centrale."
	case strings.Contains(place, "aula magna"), strings.Contains(place, "plenaria"):
		text = "L’Aula Magna è al piano 1, sulla sinistra appena usciti da scala/ascensore."
	case strings.Contains(place, "catering"):
		text = "L’area catering è nella hall principale al piano terra, lato sinistro."
	case doc.Summary != "":
		text = doc.Summary
	default:
		text = "Posizione non trovata nella piantina."
	}

	responsePlace := place
	if responsePlace == "" {
		responsePlace = "general"
	}
	return &domain.ToolResponse{
		Tool: ToolLocationLookup,
		Text: text,
		Data: map[string]any{"place": responsePlace},
	}, nil
}

// findDocument resolves a document by ID, tolerating its absence with an
// empty document so tools can fall back to their default texts.
func (s *toolService) findDocument(ctx context.Context, id string) (domain.Document, error) {
	documents, _, err := s.source.Load(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load knowledge base: %w", err)
	}
	for _, doc := range documents {
		if doc.ID == id {
			return doc, nil
		}
	}
	return domain.Document{ID: id}, nil
}

// extractSection collects the lines from the first mention of keyword until
// the next markdown heading. A heading line that itself mentions the keyword
// terminates the scan immediately.
func extractSection(content, keyword string) string {
	upper := strings.ToUpper(keyword)
	started := false
	var collected []string

	for _, line := range splitLines(content) {
		if !started && strings.Contains(strings.ToUpper(line), upper) {
			started = true
		}
		if started {
			if strings.HasPrefix(line, "## ") {
				break
			}
			collected = append(collected, line)
		}
	}

	if text := strings.TrimSpace(strings.Join(collected, "\n")); text != "" {
		return text
	}
	return "Informazione non trovata."
}

func splitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, ok := payload[key].(string)
	if !ok {
		return ""
	}
	return value
}
