package core

import (
	"context"
	"reflect"
	"testing"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// fakeDirectory backs targeting tests without a database.
type fakeDirectory struct {
	roles    map[models.UserID]models.UserRole
	students map[models.StudentID]*models.Student
}

func (d *fakeDirectory) UserRole(_ context.Context, id models.UserID) (models.UserRole, error) {
	role, ok := d.roles[id]
	if !ok {
		return "", sqlite.ErrNotFound
	}
	return role, nil
}

func (d *fakeDirectory) UserIDsByRole(_ context.Context, role models.UserRole) ([]models.UserID, error) {
	var ids []models.UserID
	for id, r := range d.roles {
		if r == role {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (d *fakeDirectory) Student(_ context.Context, id models.StudentID) (*models.Student, error) {
	student, ok := d.students[id]
	if !ok {
		return nil, sqlite.ErrNotFound
	}
	return student, nil
}

func ptrUser(id models.UserID) *models.UserID          { return &id }
func ptrStudent(id models.StudentID) *models.StudentID { return &id }

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		roles: map[models.UserID]models.UserRole{
			1: models.UserRoleStudent,
			2: models.UserRoleParent,
			3: models.UserRoleTeacher,
			4: models.UserRoleTeacher,
			5: models.UserRoleAdmin,
		},
		students: map[models.StudentID]*models.Student{
			10: {ID: 10, UserID: 1, ParentUserID: ptrUser(2)},
			11: {ID: 11, UserID: 6},
		},
	}
}

func TestResolveRecipients(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		name  string
		alert *models.Alert
		want  []models.UserID
	}{
		{
			name:  "explicit users only",
			alert: &models.Alert{TargetUserIDs: []models.UserID{5, 3}},
			want:  []models.UserID{3, 5},
		},
		{
			name:  "role broadcast",
			alert: &models.Alert{TargetRoles: []models.UserRole{models.UserRoleTeacher}},
			want:  []models.UserID{3, 4},
		},
		{
			name:  "student reaches student and parent",
			alert: &models.Alert{StudentID: ptrStudent(10)},
			want:  []models.UserID{1, 2},
		},
		{
			name:  "student without parent",
			alert: &models.Alert{StudentID: ptrStudent(11)},
			want:  []models.UserID{6},
		},
		{
			name: "union deduplicates",
			alert: &models.Alert{
				TargetUserIDs: []models.UserID{1, 3},
				TargetRoles:   []models.UserRole{models.UserRoleTeacher},
				StudentID:     ptrStudent(10),
			},
			want: []models.UserID{1, 2, 3, 4},
		},
		{
			name:  "deleted student resolves to empty",
			alert: &models.Alert{StudentID: ptrStudent(99)},
			want:  []models.UserID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRecipients(context.Background(), dir, tt.alert)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveRecipients() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsVisibleTo(t *testing.T) {
	dir := testDirectory()

	alert := &models.Alert{
		TargetUserIDs: []models.UserID{5},
		TargetRoles:   []models.UserRole{models.UserRoleTeacher},
		StudentID:     ptrStudent(10),
	}

	tests := []struct {
		name   string
		userID models.UserID
		role   models.UserRole
		want   bool
	}{
		{"explicit target", 5, models.UserRoleAdmin, true},
		{"role match", 3, models.UserRoleTeacher, true},
		{"student user", 1, models.UserRoleStudent, true},
		{"linked parent", 2, models.UserRoleParent, true},
		{"unrelated user", 7, models.UserRoleMentor, false},
		{"unrelated parent", 8, models.UserRoleParent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsVisibleTo(context.Background(), dir, alert, tt.userID, tt.role)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsVisibleTo(%d, %s) = %v, want %v", tt.userID, tt.role, got, tt.want)
			}
		})
	}
}

func TestIsVisibleToDeletedStudent(t *testing.T) {
	dir := testDirectory()
	alert := &models.Alert{StudentID: ptrStudent(99)}

	visible, err := IsVisibleTo(context.Background(), dir, alert, 1, models.UserRoleStudent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visible {
		t.Error("alert referencing a deleted student should not be visible")
	}
}
