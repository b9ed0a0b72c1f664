package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"vsp/internal/config"
	"vsp/internal/domain"
	"vsp/internal/storage"
)

// Recorder pushes run outcomes into a MySQL table so teams can collect
// validation results from many machines centrally. It is entirely
// optional: without connection settings it stays disabled, and any
// database failure is surfaced as a warning by the caller, never as a
// run failure.
type Recorder struct {
	cfg   *config.Config
	store storage.Store
}

// NewRecorder creates a new Recorder
func NewRecorder(cfg *config.Config, store storage.Store) *Recorder {
	return &Recorder{cfg: cfg, store: store}
}

// Enabled reports whether database settings are configured. A .env file
// in the test root is loaded first, so suites can ship their own
// settings.
func (r *Recorder) Enabled() bool {
	// No .env file is fine, plain environment variables still count.
	_ = godotenv.Load(filepath.Join(r.cfg.GetTestRoot(), ".env"))
	if os.Getenv("VSP_DB_DISABLE") != "" {
		return false
	}
	return os.Getenv("VSP_DB_HOST") != ""
}

// Record inserts one row per test case with the current phase statuses.
func (r *Recorder) Record(cases []*domain.Context) error {
	db, err := sql.Open("mysql", dsnFromEnv())
	if err != nil {
		return fmt.Errorf("connect to history database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping history database: %w", err)
	}
	if err := ensureTable(db); err != nil {
		return err
	}

	now := time.Now()
	for _, tc := range cases {
		rec := r.store.Load(tc.StatusFile)
		_, err := db.Exec(
			"INSERT INTO case_results (run_at, case_id, prepare_status, run_status, check_status) VALUES (?, ?, ?, ?, ?)",
			now, tc.CaseID,
			string(rec.StatusOf(domain.PhasePrepare)),
			string(rec.StatusOf(domain.PhaseRun)),
			string(rec.StatusOf(domain.PhaseCheck)),
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", tc.CaseID, err)
		}
	}
	return nil
}

func ensureTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS case_results (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_at DATETIME NOT NULL,
		case_id VARCHAR(255) NOT NULL,
		prepare_status VARCHAR(16) NOT NULL,
		run_status VARCHAR(16) NOT NULL,
		check_status VARCHAR(16) NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// dsnFromEnv assembles the connection string from the environment,
// with the same defaulting style as local MySQL setups.
func dsnFromEnv() string {
	host := os.Getenv("VSP_DB_HOST")
	port := os.Getenv("VSP_DB_PORT")
	if port == "" {
		port = "3306"
	}
	user := os.Getenv("VSP_DB_USERNAME")
	if user == "" {
		user = "root"
	}
	password := os.Getenv("VSP_DB_PASSWORD")
	name := os.Getenv("VSP_DB_DATABASE")
	if name == "" {
		name = "vsp"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, name)
}
