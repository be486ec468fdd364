package template

import (
	"errors"
	"reflect"
	"testing"

	"github.com/campushq/beacon/pkg/models"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		tmpl        *models.AlertTemplate
		ctx         map[string]string
		wantTitle   string
		wantMessage string
		wantMissing string
	}{
		{
			name: "simple substitution",
			tmpl: &models.AlertTemplate{
				Name:            "bus_boarded",
				TitleTemplate:   "Bus Update: {{student_name}}",
				MessageTemplate: "{{student_name}} boarded the bus at {{stop}}.",
			},
			ctx:         map[string]string{"student_name": "Asha Rao", "stop": "Main St"},
			wantTitle:   "Bus Update: Asha Rao",
			wantMessage: "Asha Rao boarded the bus at Main St.",
		},
		{
			name: "repeated variable",
			tmpl: &models.AlertTemplate{
				Name:            "failing_grade",
				TitleTemplate:   "{{subject}} alert",
				MessageTemplate: "Grade in {{subject}} is {{grade}}. Please review {{subject}} homework.",
			},
			ctx:         map[string]string{"subject": "Math", "grade": "42"},
			wantTitle:   "Math alert",
			wantMessage: "Grade in Math is 42. Please review Math homework.",
		},
		{
			name: "whitespace inside braces",
			tmpl: &models.AlertTemplate{
				Name:            "urgent_meeting",
				TitleTemplate:   "Meeting with {{ teacher_name }}",
				MessageTemplate: "Scheduled for {{  date  }}.",
			},
			ctx:         map[string]string{"teacher_name": "Mr. Iyer", "date": "Friday"},
			wantTitle:   "Meeting with Mr. Iyer",
			wantMessage: "Scheduled for Friday.",
		},
		{
			name: "no placeholders",
			tmpl: &models.AlertTemplate{
				Name:            "static",
				TitleTemplate:   "School Closed",
				MessageTemplate: "School is closed tomorrow.",
			},
			ctx:         nil,
			wantTitle:   "School Closed",
			wantMessage: "School is closed tomorrow.",
		},
		{
			name: "empty value is a value",
			tmpl: &models.AlertTemplate{
				Name:            "note",
				TitleTemplate:   "Note{{suffix}}",
				MessageTemplate: "Body",
			},
			ctx:         map[string]string{"suffix": ""},
			wantTitle:   "Note",
			wantMessage: "Body",
		},
		{
			name: "missing variable in title",
			tmpl: &models.AlertTemplate{
				Name:            "bus_delayed",
				TitleTemplate:   "Bus {{route}} delayed",
				MessageTemplate: "Expect delays.",
			},
			ctx:         map[string]string{},
			wantMissing: "route",
		},
		{
			name: "missing variable in message",
			tmpl: &models.AlertTemplate{
				Name:            "fee_due",
				TitleTemplate:   "Fee reminder",
				MessageTemplate: "Amount due: {{amount}}",
			},
			ctx:         map[string]string{"other": "x"},
			wantMissing: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message, err := Render(tt.tmpl, tt.ctx)
			if tt.wantMissing != "" {
				var renderErr *RenderError
				if !errors.As(err, &renderErr) {
					t.Fatalf("expected RenderError, got %v", err)
				}
				if renderErr.Variable != tt.wantMissing {
					t.Errorf("missing variable = %q, want %q", renderErr.Variable, tt.wantMissing)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if message != tt.wantMessage {
				t.Errorf("message = %q, want %q", message, tt.wantMessage)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	tmpl := &models.AlertTemplate{
		TitleTemplate:   "Alert for {{student_name}}",
		MessageTemplate: "{{student_name}} at {{stop}} on route {{route}}",
	}
	got := Variables(tmpl)
	want := []string{"student_name", "stop", "route"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Variables() = %v, want %v", got, want)
	}
}

func TestVariablesNone(t *testing.T) {
	tmpl := &models.AlertTemplate{
		TitleTemplate:   "Plain",
		MessageTemplate: "No placeholders here",
	}
	if got := Variables(tmpl); got != nil {
		t.Errorf("Variables() = %v, want nil", got)
	}
}
