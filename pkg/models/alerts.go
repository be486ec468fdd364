package models

import "time"

// AlertID uniquely identifies an alert.
type AlertID int64

// AcknowledgementID uniquely identifies an acknowledgement record.
type AcknowledgementID int64

// TemplateID uniquely identifies a stored alert template.
type TemplateID int64

// AlertType classifies the domain an alert belongs to.
type AlertType string

const (
	AlertTypeTransportSafety     AlertType = "transport_safety"
	AlertTypeAcademicPerformance AlertType = "academic_performance"
	AlertTypeAttendance          AlertType = "attendance"
	AlertTypeBehavior            AlertType = "behavior"
	AlertTypeHealthWellness      AlertType = "health_wellness"
	AlertTypeSchoolSafety        AlertType = "school_safety"
	AlertTypeFinancial           AlertType = "financial"
	AlertTypeSystem              AlertType = "system"
	AlertTypeAchievement         AlertType = "achievement"
	AlertTypeParentMeeting       AlertType = "parent_meeting"
)

// ValidAlertType reports whether the given type is one of the known
// classifications.
func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypeTransportSafety, AlertTypeAcademicPerformance, AlertTypeAttendance,
		AlertTypeBehavior, AlertTypeHealthWellness, AlertTypeSchoolSafety,
		AlertTypeFinancial, AlertTypeSystem, AlertTypeAchievement, AlertTypeParentMeeting:
		return true
	default:
		return false
	}
}

// AlertPriority orders alerts for display. Emergency sorts first.
type AlertPriority string

const (
	AlertPriorityEmergency AlertPriority = "emergency"
	AlertPriorityHigh      AlertPriority = "high"
	AlertPriorityMedium    AlertPriority = "medium"
	AlertPriorityLow       AlertPriority = "low"
)

// Rank returns the sort rank of a priority: emergency=0, high=1, medium=2,
// low=3. Unknown priorities sort last.
func (p AlertPriority) Rank() int {
	switch p {
	case AlertPriorityEmergency:
		return 0
	case AlertPriorityHigh:
		return 1
	case AlertPriorityMedium:
		return 2
	case AlertPriorityLow:
		return 3
	default:
		return 4
	}
}

// ValidAlertPriority reports whether the given priority is known.
func ValidAlertPriority(p AlertPriority) bool {
	switch p {
	case AlertPriorityEmergency, AlertPriorityHigh, AlertPriorityMedium, AlertPriorityLow:
		return true
	default:
		return false
	}
}

// AlertStatus captures the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusExpired      AlertStatus = "expired"
)

// Alert is a notification record with classification, targeting and
// lifecycle status. Content is immutable once created.
type Alert struct {
	ID       AlertID       `json:"id"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Type     AlertType     `json:"alert_type"`
	Priority AlertPriority `json:"priority"`
	Status   AlertStatus   `json:"status"`

	// Targeting. An alert is visible to the union of the explicit user set,
	// users whose role is in TargetRoles, and, when StudentID is set, the
	// student plus their linked parent.
	TargetUserIDs []UserID   `json:"target_users"`
	TargetRoles   []UserRole `json:"target_user_types"`
	StudentID     *StudentID `json:"student,omitempty"`

	CreatedBy UserID     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Action metadata is purely descriptive; clients decide how to render it.
	ActionRequired bool   `json:"action_required"`
	ActionURL      string `json:"action_url,omitempty"`
	ActionText     string `json:"action_text,omitempty"`
}

// IsExpired reports whether the alert has passed its expiry time. Expiry is
// a computed predicate and gates visibility even before a status write.
func (a *Alert) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// HasTargeting reports whether at least one targeting mechanism is set.
// An alert without any is unreachable by every recipient query.
func (a *Alert) HasTargeting() bool {
	return len(a.TargetUserIDs) > 0 || len(a.TargetRoles) > 0 || a.StudentID != nil
}

// AlertAcknowledgement is a per-user receipt for an alert. At most one
// exists per (alert, user) pair; it is created once and never mutated.
type AlertAcknowledgement struct {
	ID             AcknowledgementID `json:"id"`
	AlertID        AlertID           `json:"alert_id"`
	UserID         UserID            `json:"user_id"`
	AcknowledgedAt time.Time         `json:"acknowledged_at"`
	Notes          string            `json:"notes,omitempty"`
}

// AlertTemplate is a reusable (title, message) pair with placeholder
// variables plus creation defaults. Rendering never mutates the template.
type AlertTemplate struct {
	ID              TemplateID    `json:"id"`
	Name            string        `json:"name"`
	Type            AlertType     `json:"alert_type"`
	TitleTemplate   string        `json:"title_template"`
	MessageTemplate string        `json:"message_template"`
	DefaultPriority AlertPriority `json:"default_priority"`
	// DefaultExpiryHours of zero means alerts from this template never expire.
	DefaultExpiryHours int       `json:"default_expiry_hours"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AlertWithState is an alert decorated with fields computed for the
// requesting user.
type AlertWithState struct {
	Alert
	IsExpired        bool                    `json:"is_expired"`
	IsAcknowledged   bool                    `json:"is_acknowledged"`
	Acknowledgements []*AlertAcknowledgement `json:"acknowledgements,omitempty"`
}

// AlertList is the response shape of the "my alerts" query.
type AlertList struct {
	Alerts              []*AlertWithState `json:"alerts"`
	UnacknowledgedCount int               `json:"unacknowledged_count"`
	TotalCount          int               `json:"total_count"`
}

// CreateAlertRequest defines the payload for creating an alert with raw
// content.
type CreateAlertRequest struct {
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	Type           AlertType     `json:"alert_type"`
	Priority       AlertPriority `json:"priority"`
	TargetUserIDs  []UserID      `json:"target_users"`
	TargetRoles    []UserRole    `json:"target_user_types"`
	StudentID      *StudentID    `json:"student,omitempty"`
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
	ActionRequired bool          `json:"action_required"`
	ActionURL      string        `json:"action_url,omitempty"`
	ActionText     string        `json:"action_text,omitempty"`
}

// CreateFromTemplateRequest creates an alert by rendering a stored template.
// Zero-valued overrides fall back to the template defaults.
type CreateFromTemplateRequest struct {
	Template       string            `json:"template"`
	Context        map[string]string `json:"context"`
	Priority       AlertPriority     `json:"priority,omitempty"`
	ExpiryHours    int               `json:"expiry_hours,omitempty"`
	TargetUserIDs  []UserID          `json:"target_users,omitempty"`
	TargetRoles    []UserRole        `json:"target_user_types,omitempty"`
	StudentID      *StudentID        `json:"student,omitempty"`
	ActionRequired bool              `json:"action_required"`
	ActionURL      string            `json:"action_url,omitempty"`
	ActionText     string            `json:"action_text,omitempty"`
}

// AcknowledgeAlertRequest carries the optional note attached to an
// acknowledgement.
type AcknowledgeAlertRequest struct {
	Notes string `json:"notes"`
}

// CreateTemplateRequest defines the payload for storing a reusable template.
type CreateTemplateRequest struct {
	Name               string        `json:"name"`
	Type               AlertType     `json:"alert_type"`
	TitleTemplate      string        `json:"title_template"`
	MessageTemplate    string        `json:"message_template"`
	DefaultPriority    AlertPriority `json:"default_priority"`
	DefaultExpiryHours int           `json:"default_expiry_hours"`
}
