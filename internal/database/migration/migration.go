package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"podapi/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.database_connections"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id              BIGSERIAL   PRIMARY KEY,
  email           TEXT        NOT NULL UNIQUE,
  hashed_password TEXT        NOT NULL,
  is_active       BOOLEAN     NOT NULL DEFAULT TRUE,
  otp             TEXT,
  otp_created_at  TIMESTAMPTZ,
  first_name      TEXT        NOT NULL,
  last_name       TEXT        NOT NULL,
  phone_number    TEXT        NOT NULL UNIQUE,
  timezone        TEXT        NOT NULL DEFAULT 'UTC',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id                 BIGSERIAL   PRIMARY KEY,
  file_id            TEXT        NOT NULL UNIQUE,
  filename           TEXT        NOT NULL,
  bl_number          TEXT        NOT NULL,
  ship_to            TEXT,
  carrier            TEXT,
  stamp_type         TEXT,
  pod_date           TIMESTAMPTZ,
  signature          TEXT,
  issued_qty         INTEGER,
  received_qty       INTEGER,
  none_qty           INTEGER,
  dama_qty           INTEGER,
  short_qty          INTEGER,
  overa_qty          INTEGER,
  refus_qty          INTEGER,
  seal_i             TEXT,
  recognition_status TEXT        NOT NULL,
  review_status      TEXT        NOT NULL,
  reviewed_by        TEXT,
  auto_confirm       BOOLEAN     NOT NULL DEFAULT FALSE,
  document_path      TEXT,
  created_on         TIMESTAMPTZ NOT NULL DEFAULT now(),
  changed_on         TIMESTAMPTZ,
  user_id            BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_index_files_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_user_id ON files (user_id);`,
	},
	{
		Name: "create_table_file_history",
		SQL: `CREATE TABLE IF NOT EXISTS file_history (
  id        BIGSERIAL   PRIMARY KEY,
  file_id   BIGINT      NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  action    TEXT        NOT NULL,
  details   TEXT,
  timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_file_history_file_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_history_file_id ON file_history (file_id, timestamp DESC);`,
	},
	{
		Name: "create_table_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS jobs (
  id          BIGSERIAL   PRIMARY KEY,
  title       TEXT        NOT NULL,
  active_days JSONB       NOT NULL DEFAULT '{"MON":false,"TUE":false,"WED":false,"THU":false,"FRI":false,"SAT":false,"SUN":false}',
  at_from     TEXT        NOT NULL,
  "to"        TEXT        NOT NULL,
  every       TEXT,
  status      TEXT        NOT NULL DEFAULT 'pending',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ,
  user_id     BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_index_jobs_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_user_id ON jobs (user_id);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id          BIGSERIAL   PRIMARY KEY,
  text        TEXT        NOT NULL,
  related_url TEXT,
  timestamp   TIMESTAMPTZ NOT NULL DEFAULT now(),
  user_id     BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_index_notifications_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id);`,
	},
	{
		Name: "create_table_database_connections",
		SQL: `CREATE TABLE IF NOT EXISTS database_connections (
  id           BIGSERIAL PRIMARY KEY,
  system_id    TEXT      NOT NULL UNIQUE,
  username     TEXT      NOT NULL,
  password     TEXT      NOT NULL,
  ip_address   TEXT      NOT NULL,
  port         INTEGER   NOT NULL CHECK (port BETWEEN 1 AND 65535),
  service_name TEXT      NOT NULL
);`,
	},
}

// EnsureMigrated runs the schema steps unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logging.Component(logger, "database").With(slog.String("db_host", dbHost))

	log.Info("db_migration_check", slog.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('" + sentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			slog.String("status", "success"),
			slog.String("detail", "schema already exists, skipping migration"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", slog.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				slog.String("status", "error"),
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			slog.String("status", "success"),
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
