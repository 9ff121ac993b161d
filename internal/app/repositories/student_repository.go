package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/helpers"
)

// StudentRepository handles student rows on top of the record store
type StudentRepository struct {
	store *RecordStore
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(store *RecordStore) *StudentRepository {
	return &StudentRepository{store: store}
}

// List returns every student in storage order
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	rows, err := r.store.FetchAll(ctx, TableStudents)
	if err != nil {
		return nil, err
	}

	students := make([]*models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, studentFromRow(row))
	}
	return students, nil
}

// GetByIDNo retrieves a student by ID number
func (r *StudentRepository) GetByIDNo(ctx context.Context, idno string) (*models.Student, error) {
	rows, err := r.store.FetchWhere(ctx, TableStudents, map[string]any{"idno": idno})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return studentFromRow(rows[0]), nil
}

// Create inserts a student. A taken ID number is apperrors.ErrDuplicateKey.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	values := studentColumns(student)
	values["idno"] = student.IDNo
	return r.store.Insert(ctx, TableStudents, values)
}

// Update rewrites every column of the student identified by student.IDNo
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	_, err := r.store.Update(ctx, TableStudents, map[string]any{"idno": student.IDNo}, studentColumns(student))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %w", apperrors.ErrStudentNotFound, err)
	}
	return err
}

// Delete removes a student by ID number
func (r *StudentRepository) Delete(ctx context.Context, idno string) error {
	n, err := r.store.Delete(ctx, TableStudents, map[string]any{"idno": idno})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

func studentColumns(s *models.Student) map[string]any {
	return map[string]any{
		"lastname":  s.LastName,
		"firstname": s.FirstName,
		"course":    s.Course,
		"level":     s.Level,
		"image":     helpers.NullStringValue(s.Image),
	}
}

func studentFromRow(row Row) *models.Student {
	return &models.Student{
		IDNo:      helpers.AsString(row["idno"]),
		LastName:  helpers.AsString(row["lastname"]),
		FirstName: helpers.AsString(row["firstname"]),
		Course:    helpers.AsString(row["course"]),
		Level:     helpers.AsString(row["level"]),
		Image:     helpers.AsNullString(row["image"]),
	}
}
