package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/filestorage"
	"github.com/yigit/campus/internal/pkg/helpers"
	"github.com/yigit/campus/internal/pkg/validation"
)

// Photo is an uploaded student picture
type Photo struct {
	Filename string
	Content  io.Reader
}

// StudentService defines student record operations
type StudentService interface {
	ListStudents(ctx context.Context) ([]*models.Student, error)
	GetStudent(ctx context.Context, idno string) (*models.Student, error)
	// CreateStudent stores the student and, when given, its photo
	CreateStudent(ctx context.Context, student *models.Student, photo *Photo) error
	// UpdateStudent rewrites the student's fields. A new photo replaces the old
	// one; a nil photo keeps the current image.
	UpdateStudent(ctx context.Context, student *models.Student, photo *Photo) error
	// DeleteStudent removes the record and, best-effort, its photo
	DeleteStudent(ctx context.Context, idno string) error
	ImageURL(name string) string
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo *repositories.StudentRepository
	blobs       filestorage.BlobStore
	logger      zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo *repositories.StudentRepository, blobs filestorage.BlobStore, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		blobs:       blobs,
		logger:      logger,
	}
}

// validateStudent validates student data before database operations
func (s *studentServiceImpl) validateStudent(student *models.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperrors.ErrValidationFailed)
	}
	student.IDNo = strings.TrimSpace(student.IDNo)
	if err := validation.ValidateIDNo(student.IDNo); err != nil {
		return err
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"lastname", &student.LastName},
		{"firstname", &student.FirstName},
		{"course", &student.Course},
		{"level", &student.Level},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if err := validation.ValidateName(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.studentRepo.List(ctx)
}

func (s *studentServiceImpl) GetStudent(ctx context.Context, idno string) (*models.Student, error) {
	return s.studentRepo.GetByIDNo(ctx, idno)
}

func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student, photo *Photo) error {
	if err := s.validateStudent(student); err != nil {
		return err
	}

	// friendly error for the common case; the primary key settles races
	if _, err := s.studentRepo.GetByIDNo(ctx, student.IDNo); err == nil {
		return apperrors.ErrStudentAlreadyExist
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	student.Image = sql.NullString{}
	stored, err := s.savePhoto(ctx, student.IDNo, photo, "")
	if err != nil {
		return err
	}
	if stored != nil {
		student.Image = helpers.GetContentNullString(stored.name)
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicateKey) {
			// blob names derive from the idno, so the file may belong to the existing student
			return fmt.Errorf("%w: %w", apperrors.ErrStudentAlreadyExist, err)
		}
		s.discardPhoto(ctx, stored)
		return err
	}

	s.logger.Info().Str("idno", student.IDNo).Bool("hasImage", stored != nil).Msg("Student added")
	return nil
}

func (s *studentServiceImpl) UpdateStudent(ctx context.Context, student *models.Student, photo *Photo) error {
	if err := s.validateStudent(student); err != nil {
		return err
	}

	current, err := s.studentRepo.GetByIDNo(ctx, student.IDNo)
	if err != nil {
		return err
	}

	stored, err := s.savePhoto(ctx, student.IDNo, photo, current.Image.String)
	if err != nil {
		return err
	}
	student.Image = current.Image
	if stored != nil {
		student.Image = helpers.GetContentNullString(stored.name)
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		s.discardPhoto(ctx, stored)
		return err
	}

	if stored != nil {
		if err := s.commitPhoto(ctx, stored); err != nil {
			s.discardPhoto(ctx, stored)
			return fmt.Errorf("student updated but the photo was not replaced: %w", err)
		}
		if current.HasImage() && current.Image.String != stored.name {
			s.removeBlob(ctx, current.Image.String)
		}
	}

	s.logger.Info().Str("idno", student.IDNo).Bool("imageReplaced", stored != nil).Msg("Student updated")
	return nil
}

func (s *studentServiceImpl) DeleteStudent(ctx context.Context, idno string) error {
	current, err := s.studentRepo.GetByIDNo(ctx, idno)
	if err != nil {
		return err
	}

	if err := s.studentRepo.Delete(ctx, idno); err != nil {
		return err
	}

	if current.HasImage() {
		s.removeBlob(ctx, current.Image.String)
	}
	s.logger.Info().Str("idno", idno).Msg("Student deleted")
	return nil
}

func (s *studentServiceImpl) ImageURL(name string) string {
	return s.blobs.URL(name)
}

// storedPhoto is an upload already written to the blob store. When it would
// overwrite the student's current photo it waits under staging until commit.
type storedPhoto struct {
	name    string
	staging string
}

// savePhoto stores the upload under idno_<secure name> and returns it, or nil
// when no photo was sent. current is the student's existing image, the only
// taken name the upload may reuse.
func (s *studentServiceImpl) savePhoto(ctx context.Context, idno string, photo *Photo, current string) (*storedPhoto, error) {
	if photo == nil || photo.Content == nil || photo.Filename == "" {
		return nil, nil
	}

	name := filestorage.BlobName(idno, photo.Filename)
	if name == "" {
		return nil, apperrors.NewValidationError("image", "image filename is not usable")
	}

	if name == current {
		staging := "." + uuid.NewString() + "_" + name
		if err := s.blobs.Save(ctx, staging, photo.Content); err != nil {
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		return &storedPhoto{name: name, staging: staging}, nil
	}

	// "a" + "b_c.png" and "a_b" + "c.png" give the same name
	taken, err := s.blobs.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check photo name: %w", err)
	}
	if taken {
		return nil, apperrors.NewConflictError(apperrors.ErrImageNameTaken,
			fmt.Sprintf("Photo name %q is already used by another student. Rename the file and try again.", name))
	}

	if err := s.blobs.Save(ctx, name, photo.Content); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	return &storedPhoto{name: name}, nil
}

// commitPhoto moves a staged upload over the photo it replaces
func (s *studentServiceImpl) commitPhoto(ctx context.Context, p *storedPhoto) error {
	if p.staging == "" {
		return nil
	}
	return s.blobs.Rename(ctx, p.staging, p.name)
}

// discardPhoto removes an upload whose row change did not happen
func (s *studentServiceImpl) discardPhoto(ctx context.Context, p *storedPhoto) {
	if p == nil {
		return
	}
	if p.staging != "" {
		s.removeBlob(ctx, p.staging)
		return
	}
	s.removeBlob(ctx, p.name)
}

// removeBlob deletes a photo; a dangling blob is logged, never fatal
func (s *studentServiceImpl) removeBlob(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.blobs.Delete(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("blob", name).Msg("Failed to delete student photo")
	}
}
