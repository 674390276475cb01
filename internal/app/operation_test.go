package app

import "testing"

func TestNewOperation(t *testing.T) {
	op := NewOperation("ImportGame", "/roms")

	if op.Operation != "ImportGame" || op.Parameters != "/roms" {
		t.Errorf("NewOperation() = %+v", op)
	}
	if op.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", op.Status, StatusSuccess)
	}
	if op.Persisted() {
		t.Error("new operation reported as persisted")
	}

	op.Fail()
	if op.Status != StatusError {
		t.Errorf("Status after Fail() = %q, want %q", op.Status, StatusError)
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{ID: tt.id}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}
