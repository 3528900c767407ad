package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "player@example.com", wantErr: false},
		{name: "valid with plus", email: "player+tag@example.com", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "missing domain", email: "player@", wantErr: true},
		{name: "missing at", email: "player.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword(""); err == nil {
		t.Error("expected error for empty password")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateGrid(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		wantErr bool
	}{
		{name: "smallest allowed", rows: 2, cols: 2, wantErr: false},
		{name: "largest allowed", rows: 20, cols: 20, wantErr: false},
		{name: "rows too small", rows: 1, cols: 5, wantErr: true},
		{name: "cols too small", rows: 5, cols: 1, wantErr: true},
		{name: "rows too large", rows: 21, cols: 5, wantErr: true},
		{name: "cols too large", rows: 5, cols: 21, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrid(tt.rows, tt.cols)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGrid(%d, %d) error = %v, wantErr %v", tt.rows, tt.cols, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSortOrder(t *testing.T) {
	if err := ValidateSortOrder(0); err == nil {
		t.Error("expected error for zero sort order")
	}
	if err := ValidateSortOrder(-3); err == nil {
		t.Error("expected error for negative sort order")
	}
	if err := ValidateSortOrder(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePieceIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{name: "nil list", ids: nil, wantErr: false},
		{name: "normal ids", ids: []string{"p1", "p2", "p3"}, wantErr: false},
		{name: "empty id", ids: []string{"p1", ""}, wantErr: true},
		{name: "whitespace id", ids: []string{"   "}, wantErr: true},
		{name: "id too long", ids: []string{strings.Repeat("x", MaxPieceIDLength+1)}, wantErr: true},
		{name: "too many ids", ids: make([]string, MaxGridSide*MaxGridSide+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fill placeholder entries so only the count is under test
			if tt.name == "too many ids" {
				for i := range tt.ids {
					tt.ids[i] = "p"
				}
			}
			err := ValidatePieceIDs(tt.ids)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePieceIDs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "rows", Message: "out of range"}
	if got := err.Error(); got != "rows: out of range" {
		t.Errorf("ValidationError.Error() = %q", got)
	}
}
