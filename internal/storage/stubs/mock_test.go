package stubs

import (
	"context"
	"errors"
	"testing"
)

func TestMockStore_AppendRow(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	if err := store.AppendRow(ctx, []string{"Русский", "Иван Иванов", "+998901234567"}); err != nil {
		t.Fatalf("Failed to append row: %v", err)
	}
	if err := store.AppendRow(ctx, []string{"O'zbekcha", "Aziz Karimov", "+998911112233"}); err != nil {
		t.Fatalf("Failed to append row: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	// Rows keep insertion order
	if rows[0][1] != "Иван Иванов" {
		t.Errorf("Expected first row to be Иван Иванов, got %s", rows[0][1])
	}
	if rows[1][1] != "Aziz Karimov" {
		t.Errorf("Expected second row to be Aziz Karimov, got %s", rows[1][1])
	}
}

func TestMockStore_RowIsCopied(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	row := []string{"a", "b"}
	if err := store.AppendRow(ctx, row); err != nil {
		t.Fatalf("Failed to append row: %v", err)
	}
	row[0] = "changed"

	rows := store.Rows()
	if rows[0][0] != "a" {
		t.Errorf("Expected stored row to be unaffected by caller mutation, got %s", rows[0][0])
	}

	rows[0][1] = "changed"
	if store.Rows()[0][1] != "b" {
		t.Error("Expected Rows to return a copy")
	}
}

func TestMockStore_FailWith(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	store.FailWith(boom)
	if err := store.AppendRow(ctx, []string{"x"}); !errors.Is(err, boom) {
		t.Fatalf("Expected injected error, got %v", err)
	}
	if len(store.Rows()) != 0 {
		t.Error("Expected no rows after failed append")
	}

	store.FailWith(nil)
	if err := store.AppendRow(ctx, []string{"x"}); err != nil {
		t.Fatalf("Expected append to succeed after reset, got %v", err)
	}
	if len(store.Rows()) != 1 {
		t.Error("Expected one row after reset")
	}
}
