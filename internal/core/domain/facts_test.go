package domain

import "testing"

func TestMergeTree_DeepMerge(t *testing.T) {
	dst := map[string]any{
		"contacts": map[string]any{
			"secretariat": map[string]any{
				"email": "old@example.com",
				"phone": "+39 02 0000000",
			},
		},
	}
	src := map[string]any{
		"contacts": map[string]any{
			"secretariat": map[string]any{
				"email": "new@example.com",
			},
			"responsabile_info_point": map[string]any{
				"name": "Maria Rossi",
			},
		},
	}

	merged := MergeTree(dst, src)
	table := FlattenTree(merged)

	if got := table.Get("contacts.secretariat.email"); got != "new@example.com" {
		t.Errorf("expected later file to win, got %q", got)
	}
	if got := table.Get("contacts.secretariat.phone"); got != "+39 02 0000000" {
		t.Errorf("expected sibling key to survive merge, got %q", got)
	}
	if got := table.Get("contacts.responsabile_info_point.name"); got != "Maria Rossi" {
		t.Errorf("expected new record to be merged in, got %q", got)
	}
}

func TestFlattenTree_Scalars(t *testing.T) {
	table := FlattenTree(map[string]any{
		"venue": map[string]any{
			"floors": float64(2),
			"open":   true,
			"note":   "  Aula Magna  ",
			"rooms":  []any{"Sala A", "Sala B"},
			"none":   nil,
		},
	})

	want := map[string]string{
		"venue.floors":  "2",
		"venue.open":    "true",
		"venue.note":    "Aula Magna",
		"venue.rooms.0": "Sala A",
		"venue.rooms.1": "Sala B",
		"venue.none":    "",
	}
	for path, value := range want {
		if got := table.Get(path); got != value {
			t.Errorf("Get(%q) = %q, want %q", path, got, value)
		}
	}
}

func TestFactTable_Record(t *testing.T) {
	table := FactTable{
		"contacts.secretariat.email": "segreteria@example.com",
		"contacts.secretariat.phone": "+39 02 1234567",
		"contacts.other.phone":       "+39 02 7654321",
	}

	record := table.Record("contacts.secretariat")
	if len(record) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(record))
	}
	if record["email"] != "segreteria@example.com" {
		t.Errorf("unexpected email: %q", record["email"])
	}
	if _, ok := record["contacts.other.phone"]; ok {
		t.Error("record must not include keys outside the prefix")
	}
}

func TestFactTable_Has(t *testing.T) {
	table := FactTable{"contacts.secretariat.email": "x@example.com"}

	if !table.Has("contacts.secretariat.email") {
		t.Error("expected exact path to be present")
	}
	if !table.Has("contacts.secretariat") {
		t.Error("expected prefix path to be present")
	}
	if table.Has("contacts.secretaria") {
		t.Error("partial segment must not match")
	}
}

func TestFactTable_Lines_Sorted(t *testing.T) {
	table := FactTable{
		"b.key": "2",
		"a.key": "1",
	}
	if got := table.Lines(); got != "a.key: 1\nb.key: 2" {
		t.Errorf("unexpected rendering: %q", got)
	}
}
