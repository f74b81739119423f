package models

import "time"

// AuditAction names something worth keeping a trail of.
type AuditAction string

const (
	AuditUserRegistered  AuditAction = "user_registered"
	AuditUserApproved    AuditAction = "user_approved"
	AuditUserRejected    AuditAction = "user_rejected"
	AuditUserSuspended   AuditAction = "user_suspended"
	AuditUserPromoted    AuditAction = "user_promoted"
	AuditFounderMarked   AuditAction = "founder_marked"
	AuditCodeCreated     AuditAction = "code_created"
	AuditCodeEdited      AuditAction = "code_edited"
	AuditCodeDeactivated AuditAction = "code_deactivated"
	AuditCodeDeleted     AuditAction = "code_deleted"
	AuditPointsAdjusted  AuditAction = "points_adjusted"
	AuditDisciplineSet   AuditAction = "discipline_adjusted"
	AuditProfileUpdated  AuditAction = "profile_updated"
	AuditLogin           AuditAction = "login"
)

// AuditLog records one action. PerformedBy is the partition key.
type AuditLog struct {
	ID          string            `json:"id"`
	Action      AuditAction       `json:"action"`
	PerformedBy string            `json:"performed_by"`
	TargetUser  string            `json:"target_user,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
