package orders

import (
	"context"
	"testing"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"COMPLETED", StatusCompleted, false},
		{"CANCELLED", StatusCancelled, false},
		{"pending", "", true},
		{"DONE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseStatus(%q): expected error", tt.in)
				}
				if !apperror.IsCode(err, apperror.CodeInvalidStatus) {
					t.Errorf("ParseStatus(%q): wrong code: %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusPending.CanEdit() {
		t.Error("PENDING must allow edits")
	}
	if StatusCompleted.CanEdit() {
		t.Error("COMPLETED must reject edits")
	}
	if StatusCancelled.CanEdit() {
		t.Error("CANCELLED must reject edits")
	}

	// Completed orders may still be cancelled; cancelled is final.
	if !StatusCompleted.CanChangeStatus() {
		t.Error("COMPLETED -> CANCELLED must be legal")
	}
	if !StatusPending.CanChangeStatus() {
		t.Error("PENDING orders may change status")
	}
	if StatusCancelled.CanChangeStatus() {
		t.Error("nothing leaves CANCELLED")
	}
}

func TestCreateInput_Validate(t *testing.T) {
	ctx := context.Background()
	valid := CreateInput{
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: id.New(), Quantity: 1}},
	}

	if err := valid.Validate(ctx); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty name", func(in *CreateInput) { in.CustomerName = "  " }},
		{"empty phone", func(in *CreateInput) { in.CustomerPhone = "" }},
		{"no lines", func(in *CreateInput) { in.Lines = nil }},
		{"nil recipe", func(in *CreateInput) { in.Lines = []LineInput{{RecipeID: id.Nil(), Quantity: 1}} }},
		{"zero quantity", func(in *CreateInput) { in.Lines = []LineInput{{RecipeID: id.New(), Quantity: 0}} }},
		{"negative quantity", func(in *CreateInput) { in.Lines = []LineInput{{RecipeID: id.New(), Quantity: -2}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate(ctx)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperror.IsCode(err, apperror.CodeValidation) {
				t.Errorf("wrong code: %v", err)
			}
		})
	}
}
