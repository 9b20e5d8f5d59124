package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Postgres
	DatabaseURL string

	// Course catalog search
	CatalogBaseURL string
	CatalogAPIKey  string

	// Person directory search
	DirectoryBaseURL string
	DirectoryAPIKey  string

	// LMS (file-existence checks)
	LMSBaseURL string
	LMSToken   string

	// SFTP feed drop
	SFTPHost      string
	SFTPPort      int
	SFTPUser      string
	SFTPPass      string
	SFTPRemoteDir string
	// The drop host has no stable key yet; connecting requires an explicit
	// opt-in to skip host key verification.
	SFTPInsecureHostKey bool

	// Enrichment
	CourseWorkers   int
	PersonWorkers   int
	FreshnessWindow time.Duration

	// Optional YAML reconciliation file (ownership, strategies, ranking,
	// faculty abbreviations). Empty means compiled-in defaults.
	ReconciliationFile string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

func Load() Config {
	return Config{
		DatabaseURL: getenv("DATABASE_URL", "postgres://localhost:5432/materialrecon"),

		CatalogBaseURL: getenv("CATALOG_BASE_URL", "https://catalog.example.edu/api"),
		CatalogAPIKey:  os.Getenv("CATALOG_API_KEY"),

		DirectoryBaseURL: getenv("DIRECTORY_BASE_URL", "https://directory.example.edu/api"),
		DirectoryAPIKey:  os.Getenv("DIRECTORY_API_KEY"),

		LMSBaseURL: getenv("LMS_BASE_URL", "https://lms.example.edu"),
		LMSToken:   os.Getenv("LMS_TOKEN"),

		SFTPHost:            os.Getenv("SFTP_HOST"),
		SFTPPort:            getint("SFTP_PORT", 22),
		SFTPUser:            os.Getenv("SFTP_USER"),
		SFTPPass:            os.Getenv("SFTP_PASS"),
		SFTPRemoteDir:       getenv("SFTP_REMOTE_DIR", "/feeds"),
		SFTPInsecureHostKey: getbool("SFTP_INSECURE_HOST_KEY"),

		CourseWorkers:   getint("COURSE_WORKERS", 10),
		PersonWorkers:   getint("PERSON_WORKERS", 20),
		FreshnessWindow: time.Duration(getint("FRESHNESS_DAYS", 30)) * 24 * time.Hour,

		ReconciliationFile: os.Getenv("RECONCILIATION_FILE"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getbool(k string) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	return err == nil && b
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
