package diagnostics

import "testing"

func TestNewBatchIDIsUniqueAndNonEmpty(t *testing.T) {
	a := NewBatchID()
	b := NewBatchID()
	if a == "" || b == "" {
		t.Fatal("NewBatchID() returned an empty id")
	}
	if a == b {
		t.Fatalf("NewBatchID() returned the same id twice: %q", a)
	}
}
