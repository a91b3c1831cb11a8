package mfa

import (
	"fmt"

	"go.vocdoni.io/dvote/log"

	"github.com/zoneid/mfa-backend/errors"
)

// Operation is an administrative action on the MFA provider registry.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationDelete Operation = "delete"
)

// AdminScope is the global administrative scope, valid against any zone.
const AdminScope = "uaa.admin"

// ZoneAdminScope returns the zone-scoped administrative scope for a zone id.
func ZoneAdminScope(zoneID string) string {
	return fmt.Sprintf("zones.%s.admin", zoneID)
}

// Authorize decides whether a caller holding the given scopes may perform the
// operation against the target zone. A `zones.<zoneId>.admin` scope is only
// valid when its zone id equals the target zone, while `uaa.admin` is valid
// against any zone. The decision is a gate evaluated before any repository
// access, so a denied caller learns nothing about what exists in the zone,
// and the returned error carries no detail beyond "forbidden".
func Authorize(scopes []string, op Operation, targetZoneID string) error {
	zoneScope := ZoneAdminScope(targetZoneID)
	for _, scope := range scopes {
		if scope == AdminScope || scope == zoneScope {
			return nil
		}
	}
	log.Debugw("mfa provider operation denied",
		"operation", string(op), "zone", targetZoneID)
	return errors.ErrZoneOperationForbidden
}
