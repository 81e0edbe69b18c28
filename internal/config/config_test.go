package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"SERVER_PORT", "BLOB_BACKEND", "BLOB_FOLDER", "BLOB_LINK_MODE", "BLOB_VIEWER_HOST", "PUBLIC_URL", "PASSWORD_MIN_LENGTH", "UPLOAD_MAX_BYTES", "RESET_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BlobBackendLocal, cfg.BlobBackend)
	assert.Equal(t, DefaultFolder, cfg.BlobFolder)
	assert.Equal(t, LinkModePresign, cfg.BlobLinkMode)
	assert.Empty(t, cfg.BlobViewerHost)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, 0, cfg.PasswordMinLength)
	assert.Equal(t, int64(20<<20), cfg.UploadMaxBytes)
	assert.False(t, cfg.ResetDB)
	assert.Contains(t, cfg.DatabaseDSN, DefaultRecordStore)
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("BLOB_BACKEND", "S3")
	t.Setenv("PASSWORD_MIN_LENGTH", "8")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "http://localhost:9090", cfg.PublicURL)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	assert.Equal(t, 8, cfg.PasswordMinLength)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
	assert.True(t, cfg.S3PathStyle)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// registers restoration of the original value, then leaves the key unset
	t.Setenv("BLOB_VIEWER_HOST", "")
	require.NoError(t, os.Unsetenv("BLOB_VIEWER_HOST"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BLOB_VIEWER_HOST=files.example.com\n"), 0o600))

	cfg := Load()
	assert.Equal(t, "files.example.com", cfg.BlobViewerHost)
}

func TestLoadCredentials_FileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service_account.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_key_id":"file-key","secret_access_key":"file-secret"}`), 0o600))

	cfg := &Config{CredentialsFile: path, CredentialsBundle: `{"access_key_id":"bundle-key"}`}
	creds, err := cfg.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "file-key", creds.AccessKeyID)
	assert.Equal(t, "file-secret", creds.SecretAccessKey)
}

func TestLoadCredentials_BundleFallback(t *testing.T) {
	cfg := &Config{
		CredentialsFile:   filepath.Join(t.TempDir(), "missing.json"),
		CredentialsBundle: `{"access_key_id":"bundle-key","secret_access_key":"bundle-secret"}`,
	}
	creds, err := cfg.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "bundle-key", creds.AccessKeyID)
}

func TestLoadCredentials_NoneAndInvalid(t *testing.T) {
	cfg := &Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}
	creds, err := cfg.LoadCredentials()
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	cfg.CredentialsBundle = "{not json"
	_, err = cfg.LoadCredentials()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
