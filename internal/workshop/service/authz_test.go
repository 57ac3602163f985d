package service

import (
	"errors"
	"testing"

	"github.com/gearbox/workshop/internal/workshop/entity"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		action  Action
		role    entity.Role
		allowed bool
	}{
		{ActionCreateCatalogEntry, entity.RoleManager, true},
		{ActionCreateCatalogEntry, entity.RoleMechanic, false},
		{ActionCreateCatalogEntry, entity.RoleCustomer, false},
		{ActionConsumePart, entity.RoleManager, true},
		{ActionConsumePart, entity.RoleMechanic, false},
		{ActionSetTicketStatus, entity.RoleMechanic, true},
		{ActionSetTicketStatus, entity.RoleManager, true},
		{ActionSetTicketStatus, entity.RoleCustomer, false},
		{ActionAssignMechanic, entity.RoleManager, true},
		{ActionAssignMechanic, entity.RoleMechanic, false},
		{ActionChangeRole, entity.RoleManager, true},
		{ActionChangeRole, entity.RoleMechanic, false},
		{ActionExportReports, entity.RoleManager, true},
		{ActionExportReports, entity.RoleCustomer, false},
		{ActionUploadAttachment, entity.RoleCustomer, true},
		{ActionUploadAttachment, entity.RoleMechanic, true},
		{ActionUploadAttachment, entity.RoleManager, true},
	}

	for _, tc := range cases {
		if got := Allowed(tc.action, tc.role); got != tc.allowed {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tc.action, tc.role, got, tc.allowed)
		}
	}
}

func TestUnlistedActionsAreOpen(t *testing.T) {
	if !Allowed(Action("ticket.read"), entity.RoleCustomer) {
		t.Errorf("Expected unlisted actions open to any authenticated role")
	}
}

func TestRequireWrapsForbidden(t *testing.T) {
	err := require(ActionConsumePart, Principal{ID: "p1", Role: entity.RoleMechanic})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}

	if err := require(ActionConsumePart, Principal{ID: "p2", Role: entity.RoleManager}); err != nil {
		t.Fatalf("Expected nil for manager, got %v", err)
	}
}
