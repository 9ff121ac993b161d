package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/filestorage"
)

func newStudent(idno string) *models.Student {
	return &models.Student{IDNo: idno, LastName: "Doe", FirstName: "Jane", Course: "CS", Level: "1"}
}

func photo(name, content string) *Photo {
	return &Photo{Filename: name, Content: strings.NewReader(content)}
}

func blobExists(t *testing.T, env *testEnv, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(env.blobDir, name))
	return err == nil
}

func TestStudentService_CreateWithPhoto(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	require.NoError(t, svc.CreateStudent(ctx, newStudent("001"), photo("my face.png", "img")))

	got, err := svc.GetStudent(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "001_my_face.png", got.Image.String)
	assert.True(t, blobExists(t, env, "001_my_face.png"))
	assert.Equal(t, "/static/uploads/001_my_face.png", svc.ImageURL(got.Image.String))

	require.NoError(t, svc.CreateStudent(ctx, newStudent("002"), nil))
	got, err = svc.GetStudent(ctx, "002")
	require.NoError(t, err)
	assert.False(t, got.HasImage())
}

func TestStudentService_CreateDuplicateKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	require.NoError(t, svc.CreateStudent(ctx, newStudent("001"), nil))

	dup := newStudent("001")
	dup.FirstName = "John"
	err := svc.CreateStudent(ctx, dup, photo("john.png", "img"))
	assert.ErrorIs(t, err, apperrors.ErrStudentAlreadyExist)
	assert.False(t, blobExists(t, env, "001_john.png"))

	got, err := svc.GetStudent(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
}

func TestStudentService_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.CreateStudent(ctx, newStudent("007"), nil)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrStudentAlreadyExist)
	}
	assert.Equal(t, 1, created)

	all, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStudentService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv(t).studentService()

	missing := newStudent("003")
	missing.Course = " "
	assert.ErrorIs(t, svc.CreateStudent(ctx, missing, nil), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.CreateStudent(ctx, newStudent("../003"), nil), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.CreateStudent(ctx, nil, nil), apperrors.ErrValidationFailed)
}

func TestStudentService_UpdateReplacesPhoto(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	require.NoError(t, svc.CreateStudent(ctx, newStudent("001"), photo("old.png", "v1")))

	// no new photo keeps the current one
	edit := newStudent("001")
	edit.Course = "IT"
	edit.Level = "2"
	require.NoError(t, svc.UpdateStudent(ctx, edit, nil))
	got, err := svc.GetStudent(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "IT", got.Course)
	assert.Equal(t, "2", got.Level)
	assert.Equal(t, "001_old.png", got.Image.String)

	require.NoError(t, svc.UpdateStudent(ctx, newStudent("001"), photo("new.png", "v2")))
	got, err = svc.GetStudent(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "001_new.png", got.Image.String)
	assert.True(t, blobExists(t, env, "001_new.png"))
	assert.False(t, blobExists(t, env, "001_old.png"))

	// same upload name replaces the content once the row is updated
	require.NoError(t, svc.UpdateStudent(ctx, newStudent("001"), photo("new.png", "v3")))
	content, err := os.ReadFile(filepath.Join(env.blobDir, "001_new.png"))
	require.NoError(t, err)
	assert.Equal(t, "v3", string(content))
	entries, err := os.ReadDir(env.blobDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staged uploads left behind")

	err = svc.UpdateStudent(ctx, newStudent("404"), photo("x.png", "x"))
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.False(t, blobExists(t, env, "404_x.png"))
}

func TestStudentService_PhotoNameCollision(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	require.NoError(t, svc.CreateStudent(ctx, newStudent("a"), photo("b_c.png", "photo-of-a")))

	err := svc.CreateStudent(ctx, newStudent("a_b"), photo("c.png", "photo-of-a_b"))
	assert.ErrorIs(t, err, apperrors.ErrImageNameTaken)
	_, err = svc.GetStudent(ctx, "a_b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// an update cannot take the name either
	require.NoError(t, svc.CreateStudent(ctx, newStudent("a_b"), nil))
	err = svc.UpdateStudent(ctx, newStudent("a_b"), photo("c.png", "photo-of-a_b"))
	assert.ErrorIs(t, err, apperrors.ErrImageNameTaken)
	other, err := svc.GetStudent(ctx, "a_b")
	require.NoError(t, err)
	assert.False(t, other.HasImage())

	content, err := os.ReadFile(filepath.Join(env.blobDir, "a_b_c.png"))
	require.NoError(t, err)
	assert.Equal(t, "photo-of-a", string(content))

	require.NoError(t, svc.DeleteStudent(ctx, "a_b"))
	owner, err := svc.GetStudent(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a_b_c.png", owner.Image.String)
	assert.True(t, blobExists(t, env, "a_b_c.png"))
}

// closingBlobs closes the database right after a save, so the row change that
// follows fails
type closingBlobs struct {
	*filestorage.LocalStorage
	env *testEnv
}

func (b closingBlobs) Save(ctx context.Context, name string, r io.Reader) error {
	if err := b.LocalStorage.Save(ctx, name, r); err != nil {
		return err
	}
	return b.env.database.Close()
}

func TestStudentService_FailedUpdateKeepsCurrentPhoto(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.studentService().CreateStudent(ctx, newStudent("001"), photo("me.png", "v1")))

	svc := NewStudentService(env.repos.StudentRepository, closingBlobs{LocalStorage: env.blobs, env: env}, zerolog.Nop())
	err := svc.UpdateStudent(ctx, newStudent("001"), photo("me.png", "v2"))
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	content, err := os.ReadFile(filepath.Join(env.blobDir, "001_me.png"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))
	entries, err := os.ReadDir(env.blobDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staged upload removed")
}

func TestStudentService_DeleteRemovesPhoto(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.studentService()

	require.NoError(t, svc.CreateStudent(ctx, newStudent("001"), photo("me.png", "img")))
	require.NoError(t, svc.DeleteStudent(ctx, "001"))

	_, err := svc.GetStudent(ctx, "001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, blobExists(t, env, "001_me.png"))

	assert.ErrorIs(t, svc.DeleteStudent(ctx, "001"), apperrors.ErrStudentNotFound)
}

// brokenBlobs stores nothing and fails every delete
type brokenBlobs struct{ saved []string }

func (b *brokenBlobs) Save(_ context.Context, name string, r io.Reader) error {
	b.saved = append(b.saved, name)
	_, err := io.Copy(io.Discard, r)
	return err
}

func (b *brokenBlobs) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func (b *brokenBlobs) Rename(context.Context, string, string) error {
	return nil
}

func (b *brokenBlobs) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (b *brokenBlobs) URL(name string) string {
	return "/x/" + name
}

func TestStudentService_BlobDeleteFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	blobs := &brokenBlobs{}
	svc := NewStudentService(env.repos.StudentRepository, blobs, zerolog.Nop())

	require.NoError(t, svc.CreateStudent(ctx, newStudent("001"), photo("a.png", "a")))
	require.NoError(t, svc.UpdateStudent(ctx, newStudent("001"), photo("b.png", "b")))
	require.NoError(t, svc.DeleteStudent(ctx, "001"))
	assert.Equal(t, []string{"001_a.png", "001_b.png"}, blobs.saved)
}
