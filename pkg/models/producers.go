package models

// EmergencyAlertRequest triggers a school-wide or student-scoped
// emergency broadcast.
type EmergencyAlertRequest struct {
	// Kind selects the emergency scenario: "safety", "medical" or
	// "bus_accident".
	Kind      string     `json:"kind"`
	StudentID *StudentID `json:"student,omitempty"`
	Route     string     `json:"route,omitempty"`
	Details   string     `json:"details"`
}

// FinancialAlertRequest raises a financial alert for administrators.
type FinancialAlertRequest struct {
	// Kind selects the scenario: "irregularity" or "budget_overrun".
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Amount   string `json:"amount"`
	Details  string `json:"details,omitempty"`
}

// ParentMeetingRequest asks a student's parent for an urgent meeting.
type ParentMeetingRequest struct {
	StudentID StudentID `json:"student_id"`
	Details   string    `json:"details"`
}

// AcademicAlertRequest raises an academic standing alert for a student.
type AcademicAlertRequest struct {
	// Kind selects the scenario: "failing_grade", "attendance_concern",
	// "behavior_concern" or "positive_achievement".
	Kind      string    `json:"kind"`
	StudentID StudentID `json:"student_id"`
	Details   string    `json:"details,omitempty"`
}
