package ingredient

import (
	"context"
	"testing"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/domain/measure"
)

func TestIngredientValidate(t *testing.T) {
	tests := []struct {
		name       string
		ingredient *Ingredient
		wantField  string
	}{
		{
			name:       "valid mass ingredient",
			ingredient: New("wheat flour", measure.UnitKilogram, 10, 1),
		},
		{
			name:       "valid count ingredient ignores weight per unit",
			ingredient: New("eggs", measure.UnitCount, 30, 0),
		},
		{
			name:       "blank name",
			ingredient: New("   ", measure.UnitGram, 1, 500),
			wantField:  "name",
		},
		{
			name:       "unknown unit",
			ingredient: New("sugar", measure.Unit("oz"), 1, 500),
			wantField:  "unit",
		},
		{
			name:       "negative stock",
			ingredient: New("butter", measure.UnitGram, -1, 200),
			wantField:  "unitsInStock",
		},
		{
			name:       "zero weight per unit for volume",
			ingredient: New("milk", measure.UnitLiter, 5, 0),
			wantField:  "weightPerUnit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ingredient.Validate(context.Background())
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				t.Fatalf("Validate() = %v, want AppError", err)
			}
			if appErr.Code != apperror.CodeValidation {
				t.Errorf("code = %s, want %s", appErr.Code, apperror.CodeValidation)
			}
			if got := appErr.Details["field"]; got != tt.wantField {
				t.Errorf("field detail = %v, want %s", got, tt.wantField)
			}
		})
	}
}

func TestQuantityInStock(t *testing.T) {
	flour := New("flour", measure.UnitKilogram, 2.5, 1) // 2.5 bags of 1kg
	if got := flour.QuantityInStock(); got != 2500 {
		t.Errorf("QuantityInStock() = %v, want 2500", got)
	}

	eggs := New("eggs", measure.UnitCount, 12, 0)
	if got := eggs.QuantityInStock(); got != 12 {
		t.Errorf("QuantityInStock() = %v, want 12", got)
	}
}

func TestBasePerUnitRejectsDegenerateConfig(t *testing.T) {
	broken := New("mystery", measure.UnitGram, 1, 0)
	if _, err := broken.BasePerUnit(); !apperror.IsCode(err, apperror.CodeInvalidUnitConfig) {
		t.Fatalf("BasePerUnit() error = %v, want %s", err, apperror.CodeInvalidUnitConfig)
	}
}
