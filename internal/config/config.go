package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultFolder is the destination folder every document is stored under.
	DefaultFolder = "hr-documents"
	// DefaultRecordStore names the database holding the users and documents tables.
	DefaultRecordStore = "hrportal"

	BlobBackendS3    = "s3"
	BlobBackendLocal = "local"

	LinkModeViewer  = "viewer"
	LinkModePresign = "presign"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DatabaseDSN string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	PublicURL   string
	LogLevel    string

	PasswordMinLength int
	UploadMaxBytes    int64

	BlobBackend    string
	BlobFolder     string
	BlobLocalRoot  string
	BlobLinkMode   string
	BlobViewerHost string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool

	CredentialsFile   string
	CredentialsBundle string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")
	return &Config{
		ServerPort:  port,
		DatabaseDSN: getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/"+DefaultRecordStore+"?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:     getEnvBool("RESET_DB", false),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:"+port),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 0),
		UploadMaxBytes:    getEnvInt64("UPLOAD_MAX_BYTES", 20<<20),

		BlobBackend:    strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendLocal)),
		BlobFolder:     getEnv("BLOB_FOLDER", DefaultFolder),
		BlobLocalRoot:  getEnv("BLOB_LOCAL_ROOT", "data/blobs"),
		BlobLinkMode:   strings.ToLower(getEnv("BLOB_LINK_MODE", LinkModePresign)),
		BlobViewerHost: os.Getenv("BLOB_VIEWER_HOST"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3PathStyle:    getEnvBool("S3_PATH_STYLE", false),

		CredentialsFile:   getEnv("STORE_CREDENTIALS_FILE", "service_account.json"),
		CredentialsBundle: os.Getenv("STORE_CREDENTIALS"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
