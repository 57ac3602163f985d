package service

import (
	"fmt"

	"github.com/gearbox/workshop/internal/workshop/entity"
)

// Action names an operation subject to a role check.
type Action string

const (
	ActionCreateCatalogEntry Action = "catalog.create"
	ActionUpdateCatalogEntry Action = "catalog.update"
	ActionDeleteCatalogEntry Action = "catalog.delete"
	ActionCreateUnit         Action = "unit.create"
	ActionRemapUnit          Action = "unit.remap"
	ActionConsumePart        Action = "ticket.consume_part"
	ActionSetTicketStatus    Action = "ticket.set_status"
	ActionAssignMechanic     Action = "ticket.assign_mechanic"
	ActionRemoveMechanic     Action = "ticket.remove_mechanic"
	ActionChangeRole         Action = "mechanic.change_role"
	ActionExportReports      Action = "reports.export"
	ActionUploadAttachment   Action = "ticket.upload_attachment"
)

// capabilities is the single auditable operation -> allowed-roles table.
// Everything not listed here is open to any authenticated principal.
var capabilities = map[Action][]entity.Role{
	ActionCreateCatalogEntry: {entity.RoleManager},
	ActionUpdateCatalogEntry: {entity.RoleManager},
	ActionDeleteCatalogEntry: {entity.RoleManager},
	ActionCreateUnit:         {entity.RoleManager},
	ActionRemapUnit:          {entity.RoleManager},
	ActionConsumePart:        {entity.RoleManager},
	ActionSetTicketStatus:    {entity.RoleMechanic, entity.RoleManager},
	ActionAssignMechanic:     {entity.RoleManager},
	ActionRemoveMechanic:     {entity.RoleManager},
	ActionChangeRole:         {entity.RoleManager},
	ActionExportReports:      {entity.RoleManager},
	ActionUploadAttachment:   {entity.RoleCustomer, entity.RoleMechanic, entity.RoleManager},
}

// Allowed reports whether role may perform action.
func Allowed(action Action, role entity.Role) bool {
	roles, ok := capabilities[action]
	if !ok {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// require returns ErrForbidden when the principal's role is not in the
// capability table for action. Called before any state is touched.
func require(action Action, p Principal) error {
	if !Allowed(action, p.Role) {
		return fmt.Errorf("%w: role %q may not perform %s", ErrForbidden, p.Role, action)
	}
	return nil
}
