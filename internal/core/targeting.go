package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// Directory answers the identity questions the targeting resolver needs.
// *sqlite.DB satisfies it; tests substitute an in-memory fake.
type Directory interface {
	UserRole(ctx context.Context, id models.UserID) (models.UserRole, error)
	UserIDsByRole(ctx context.Context, role models.UserRole) ([]models.UserID, error)
	Student(ctx context.Context, id models.StudentID) (*models.Student, error)
}

// ResolveRecipients computes the full recipient set of an alert: the
// union of its explicit user list, every active user holding one of its
// target roles, and, when the alert references a student, that student's
// user plus their linked parent. The result is deduplicated and sorted.
func ResolveRecipients(ctx context.Context, dir Directory, alert *models.Alert) ([]models.UserID, error) {
	seen := make(map[models.UserID]struct{})

	for _, id := range alert.TargetUserIDs {
		seen[id] = struct{}{}
	}

	for _, role := range alert.TargetRoles {
		ids, err := dir.UserIDsByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve role %q: %w", role, err)
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	if alert.StudentID != nil {
		student, err := dir.Student(ctx, *alert.StudentID)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				// A deleted student leaves the alert reachable only via
				// its other targeting mechanisms.
				student = nil
			} else {
				return nil, fmt.Errorf("failed to resolve student %d: %w", *alert.StudentID, err)
			}
		}
		if student != nil {
			seen[student.UserID] = struct{}{}
			if student.ParentUserID != nil {
				seen[*student.ParentUserID] = struct{}{}
			}
		}
	}

	recipients := make([]models.UserID, 0, len(seen))
	for id := range seen {
		recipients = append(recipients, id)
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i] < recipients[j] })
	return recipients, nil
}

// IsVisibleTo reports whether the alert reaches the given user through
// any targeting mechanism. The same predicate gates both the "my alerts"
// listing and acknowledgement permission.
func IsVisibleTo(ctx context.Context, dir Directory, alert *models.Alert, userID models.UserID, role models.UserRole) (bool, error) {
	for _, id := range alert.TargetUserIDs {
		if id == userID {
			return true, nil
		}
	}

	for _, r := range alert.TargetRoles {
		if r == role {
			return true, nil
		}
	}

	if alert.StudentID != nil {
		student, err := dir.Student(ctx, *alert.StudentID)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to resolve student %d: %w", *alert.StudentID, err)
		}
		if student.UserID == userID {
			return true, nil
		}
		if student.ParentUserID != nil && *student.ParentUserID == userID {
			return true, nil
		}
	}

	return false, nil
}
