package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     Config
		env     string
		want    string
		wantErr bool
	}{
		{"inline json wins", Config{ServiceAccountJSON: `{"inline":true}`, ServiceAccountFile: file}, "", `{"inline":true}`, false},
		{"file", Config{ServiceAccountFile: file}, "", `{"type":"service_account"}`, false},
		{"application credentials fallback", Config{}, file, `{"type":"service_account"}`, false},
		{"missing file", Config{ServiceAccountFile: filepath.Join(dir, "nope.json")}, "", "", true},
		{"nothing configured", Config{}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", tt.env)
			got, err := credentials(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("credentials = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportMonth_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: "Expenses"}
	m := sheets.Month{Year: 2025, Month: time.January, Expenses: []core.Expense{
		{ID: "e1", CategoryID: "cat1", Amount: core.Rupees(10), Date: core.NewDate(2025, time.January, 2)},
	}}
	if _, err := c.ExportMonth(context.Background(), m); err == nil {
		t.Fatal("expected error when service is nil")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Expenses", 2025, "2025 Expenses"},
		{"", 2023, ""},
		{"Monthly Export", 2022, "2022 Monthly Export"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
		{"1800 Too Early", 2024, "2024 1800 Too Early"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}

func TestA1Range(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"2025 Expenses", "A:F", "'2025 Expenses'!A:F"},
		{"Ravi's", "A1:F1", "'Ravi''s'!A1:F1"},
	}
	for _, tt := range tests {
		if got := a1Range(tt.sheet, tt.cells); got != tt.want {
			t.Errorf("a1Range(%q, %q) = %q, want %q", tt.sheet, tt.cells, got, tt.want)
		}
	}
}

func TestPendingRows(t *testing.T) {
	existing := [][]any{
		{"Date", "Email", "Category", "Amount", "Notes", "ID"},
		{"2025-01-02", "a@example.com", "Groceries", "10", "", "e1"},
		{"2025-01-03"}, // short row
	}
	rows := [][]any{
		{"2025-01-02", "a@example.com", "Groceries", 10.0, "", "e1"},
		{"2025-01-05", "a@example.com", "Transport", 25.5, "bus", "e2"},
		{"2025-01-05", "a@example.com", "Transport", 25.5, "bus", "e2"},
	}

	got := pendingRows(existing, rows)
	if len(got) != 1 {
		t.Fatalf("pendingRows returned %d rows, want 1", len(got))
	}
	if got[0][sheets.IDColumn] != "e2" {
		t.Errorf("pending id = %v, want e2", got[0][sheets.IDColumn])
	}
}
