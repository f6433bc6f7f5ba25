package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entity")

	first := gen.Next()
	second := gen.Next()

	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorPeek(t *testing.T) {
	gen := NewIDGenerator("meeting")

	if peeked := gen.Peek(); peeked != "meeting-1" {
		t.Fatalf("expected meeting-1, got %q", peeked)
	}
	// Peeking does not consume.
	if next := gen.Next(); next != "meeting-1" {
		t.Fatalf("expected meeting-1, got %q", next)
	}
	if peeked := gen.Peek(); peeked != "meeting-2" {
		t.Fatalf("expected meeting-2, got %q", peeked)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1, got %q", next)
	}
}
