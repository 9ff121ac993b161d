package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/db"
	"github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/filestorage"
)

type testEnv struct {
	database *db.Database
	repos    *repositories.Repositories
	verifier auth.PasswordVerifier
	blobs    *filestorage.LocalStorage
	blobDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	database, err := db.OpenDSN(db.SQLite, filepath.Join(dir, "campus.db")+"?_busy_timeout=5000", db.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := repositories.NewRecordStore(database.DB, database.Dialect, repositories.DefaultSchema(), nil)
	require.NoError(t, store.Initialize(context.Background()))

	blobDir := filepath.Join(dir, "uploads")
	blobs, err := filestorage.NewLocalStorage(blobDir, "/static/uploads")
	require.NoError(t, err)

	return &testEnv{
		database: database,
		repos:    repositories.NewRepositories(store),
		verifier: auth.NewBcryptVerifier(bcrypt.MinCost),
		blobs:    blobs,
		blobDir:  blobDir,
	}
}

func (e *testEnv) authService(allowRegistration bool) AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "campus.test"})
	return NewAuthService(e.repos.AdminRepository, e.verifier, jwtService, auth.NewMemoryRevoker(),
		AuthOptions{AllowRegistration: allowRegistration}, zerolog.Nop())
}

func (e *testEnv) adminService() AdminService {
	return NewAdminService(e.repos.AdminRepository, e.verifier, zerolog.Nop())
}

func (e *testEnv) studentService() StudentService {
	return NewStudentService(e.repos.StudentRepository, e.blobs, zerolog.Nop())
}
