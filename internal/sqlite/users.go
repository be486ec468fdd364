package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/beacon/pkg/models"
)

const (
	insertUserQuery = `INSERT INTO users (email, full_name, role, status)
VALUES (?, ?, ?, ?)
RETURNING id, created_at, updated_at`

	selectUserBase = `SELECT id, email, full_name, role, status, created_at, updated_at FROM users`

	insertStudentQuery = `INSERT INTO students (
    user_id,
    parent_user_id,
    grade_level,
    bus_stop,
    attendance_rate,
    average_grade
) VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, created_at, updated_at`

	selectStudentBase = `SELECT
    id,
    user_id,
    parent_user_id,
    grade_level,
    bus_stop,
    attendance_rate,
    average_grade,
    created_at,
    updated_at
FROM students`
)

// CreateUser inserts a new user and populates its ID and timestamps.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user payload is required")
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	row := db.writeDB.QueryRowContext(ctx, insertUserQuery,
		user.Email, user.FullName, string(user.Role), string(user.Status))

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		db.log.Error("failed to create user", "error", err, "email", user.Email)
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = models.UserID(id)
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	row := db.readDB.QueryRowContext(ctx, selectUserBase+" WHERE id = ?", int64(id))
	return scanUserRow(row)
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.readDB.QueryRowContext(ctx, selectUserBase+" WHERE email = ?", email)
	return scanUserRow(row)
}

// ListUsers returns all users, newest first.
func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.readDB.QueryContext(ctx, selectUserBase+" ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UserRole returns the role tag of a user. Directory lookup used by the
// targeting resolver.
func (db *DB) UserRole(ctx context.Context, id models.UserID) (models.UserRole, error) {
	var role string
	err := db.readDB.QueryRowContext(ctx, "SELECT role FROM users WHERE id = ?", int64(id)).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get user role: %w", err)
	}
	return models.UserRole(role), nil
}

// UserIDsByRole returns the IDs of all active users carrying the given
// role tag. Directory lookup used for role-broadcast fan-out.
func (db *DB) UserIDsByRole(ctx context.Context, role models.UserRole) ([]models.UserID, error) {
	rows, err := db.readDB.QueryContext(ctx,
		"SELECT id FROM users WHERE role = ? AND status = 'active'", string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var ids []models.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, models.UserID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users by role: %w", err)
	}
	return ids, nil
}

// CreateStudent inserts a student record and populates its ID and
// timestamps.
func (db *DB) CreateStudent(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student payload is required")
	}

	var parentID any
	if student.ParentUserID != nil {
		parentID = int64(*student.ParentUserID)
	}

	row := db.writeDB.QueryRowContext(ctx, insertStudentQuery,
		int64(student.UserID),
		parentID,
		nullableString(student.GradeLevel),
		nullableString(student.BusStop),
		student.AttendanceRate,
		student.AverageGrade,
	)

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	student.ID = models.StudentID(id)
	student.CreatedAt = createdAt
	student.UpdatedAt = updatedAt
	return nil
}

// Student retrieves a student record by ID. Directory lookup used for
// relationship fan-out.
func (db *DB) Student(ctx context.Context, id models.StudentID) (*models.Student, error) {
	row := db.readDB.QueryRowContext(ctx, selectStudentBase+" WHERE id = ?", int64(id))
	student, err := scanStudent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

// StudentByUserID retrieves the student record linked to a user account.
func (db *DB) StudentByUserID(ctx context.Context, userID models.UserID) (*models.Student, error) {
	row := db.readDB.QueryRowContext(ctx, selectStudentBase+" WHERE user_id = ?", int64(userID))
	student, err := scanStudent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

// ListStudents returns all student records.
func (db *DB) ListStudents(ctx context.Context) ([]*models.Student, error) {
	rows, err := db.readDB.QueryContext(ctx, selectStudentBase+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}

func scanUserRow(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		id        int64
		email     string
		fullName  string
		role      string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := scanner.Scan(&id, &email, &fullName, &role, &status, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &models.User{
		ID:        models.UserID(id),
		Email:     email,
		FullName:  fullName,
		Role:      models.UserRole(role),
		Status:    models.UserStatus(status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func scanStudent(scanner interface{ Scan(dest ...any) error }) (*models.Student, error) {
	var (
		id             int64
		userID         int64
		parentUserID   sql.NullInt64
		gradeLevel     sql.NullString
		busStop        sql.NullString
		attendanceRate float64
		averageGrade   float64
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := scanner.Scan(&id, &userID, &parentUserID, &gradeLevel, &busStop,
		&attendanceRate, &averageGrade, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	student := &models.Student{
		ID:             models.StudentID(id),
		UserID:         models.UserID(userID),
		GradeLevel:     gradeLevel.String,
		BusStop:        busStop.String,
		AttendanceRate: attendanceRate,
		AverageGrade:   averageGrade,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	if parentUserID.Valid {
		pid := models.UserID(parentUserID.Int64)
		student.ParentUserID = &pid
	}
	return student, nil
}
