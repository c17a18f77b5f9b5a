package database

import "issue-tracker/internal/models"

// helper for writing to the audit trail; failures are swallowed on
// purpose, an audit miss must never fail the operation being audited
func CreateAuditLog(actorID uint, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		ActorID:  actorID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = DB.Create(&record).Error
}
