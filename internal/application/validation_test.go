package application

import (
	"errors"
	"testing"

	"modelrepo/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
		wantMsg   string
	}{
		{
			name:      "valid value",
			fieldName: "name",
			value:     "Order",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "parentID",
			value:     "",
			wantErr:   true,
			wantMsg:   "parent ID is required",
		},
		{
			name:      "whitespace only",
			fieldName: "name",
			value:     "   ",
			wantErr:   true,
			wantMsg:   "name is required",
		},
		{
			name:      "unmapped field name",
			fieldName: "multiplicity",
			value:     "",
			wantErr:   true,
			wantMsg:   "multiplicity is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
				if valErr.Message != tt.wantMsg {
					t.Errorf("expected message %q, got %q", tt.wantMsg, valErr.Message)
				}
			}
		})
	}
}

func TestValidateType(t *testing.T) {
	reg := domain.NewMetamodel()

	tests := []struct {
		name     string
		typeName string
		kinds    []string
		wantErr  bool
	}{
		{"concrete type", domain.TypeClass, nil, false},
		{"matching kind", domain.TypeGeneralization, []string{domain.TypeRelationship}, false},
		{"one of several kinds", domain.TypeAssociation, []string{domain.TypeView, domain.TypeRelationship}, false},
		{"unknown type", "Widget", nil, true},
		{"abstract type", domain.TypeRelationship, nil, true},
		{"wrong kind", domain.TypeClass, []string{domain.TypeRelationship}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateType(reg, "type", tt.typeName, tt.kinds...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateType() error = %v, wantErr %v", err, tt.wantErr)
			}
			var valErr *ValidationError
			if err != nil && !errors.As(err, &valErr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	if !errors.Is(&NotFoundError{ID: "x"}, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if !errors.Is(&MoveError{SourceID: "a", DestID: "b"}, ErrInvalidOperation) {
		t.Error("MoveError should match ErrInvalidOperation")
	}
	if !errors.Is(&ContainmentError{Type: "Class", ParentID: "d"}, ErrInvalidOperation) {
		t.Error("ContainmentError should match ErrInvalidOperation")
	}
}
