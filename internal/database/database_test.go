package database

import (
	"testing"

	"matchwell/backend/internal/models"
)

func TestModels_AccountsAndProfilesFirst(t *testing.T) {
	list := Models()
	if len(list) != 7 {
		t.Fatalf("Models() = %d tables, want 7", len(list))
	}
	if _, ok := list[0].(*models.Account); !ok {
		t.Errorf("first model = %T, want *models.Account", list[0])
	}
	if _, ok := list[1].(*models.Profile); !ok {
		t.Errorf("second model = %T, want *models.Profile", list[1])
	}
}
