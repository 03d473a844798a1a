package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements applied by Migrate, in order. Every
// statement is idempotent. Times are stored as UTC DATETIME(3).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id   VARCHAR(36)  NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		KEY idx_venues_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS events (
		id           VARCHAR(64)  NOT NULL PRIMARY KEY,
		title        TEXT         NOT NULL,
		venue_id     VARCHAR(36)  NULL,
		artist_names TEXT         NOT NULL,
		start_time   DATETIME(3)  NOT NULL,
		end_time     DATETIME(3)  NOT NULL,
		KEY idx_events_venue_start (venue_id, start_time),
		CONSTRAINT fk_events_venue FOREIGN KEY (venue_id) REFERENCES venues (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS surveys (
		id               VARCHAR(36)  NOT NULL PRIMARY KEY,
		venue_id         VARCHAR(36)  NOT NULL,
		mellow_or_dancey INT          NOT NULL,
		crowded          INT          NOT NULL,
		security_chill   INT          NOT NULL,
		ratio            INT          NOT NULL,
		line_speed       INT          NOT NULL,
		comment          VARCHAR(200) NULL,
		created_at       DATETIME(3)  NOT NULL,
		KEY idx_surveys_venue_created (venue_id, created_at),
		CONSTRAINT fk_surveys_venue FOREIGN KEY (venue_id) REFERENCES venues (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS event_sync_watermarks (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		created_at    DATETIME(3)     NOT NULL,
		events_synced INT             NOT NULL,
		KEY idx_watermarks_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
