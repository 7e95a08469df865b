package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the CREATE statements in dependency order.  Every statement
// is idempotent so Migrate can run on each boot.
//
// bookings.active_slot is NULL for cancelled (and legacy rejected) rows and
// "date|time|table" otherwise; its unique index is what makes two live
// bookings for the same table and slot impossible.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		token_hash CHAR(64)    NOT NULL,
		expires_at DATETIME    NOT NULL,
		revoked_at DATETIME    NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		created_at DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		full_name  VARCHAR(255) NULL,
		email      VARCHAR(255) NULL,
		phone      VARCHAR(32)  NULL,
		CONSTRAINT fk_profiles_user FOREIGN KEY (id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id      CHAR(36)              NOT NULL PRIMARY KEY,
		user_id CHAR(36)              NOT NULL,
		role    ENUM('admin','user')  NOT NULL,
		UNIQUE KEY uq_user_roles (user_id, role),
		CONSTRAINT fk_user_roles_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS services (
		id          CHAR(36)      NOT NULL PRIMARY KEY,
		created_at  DATETIME(3)   NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at  DATETIME(3)   NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		name        VARCHAR(255)  NOT NULL,
		category    VARCHAR(64)   NOT NULL,
		description TEXT          NULL,
		duration    VARCHAR(64)   NULL,
		price       VARCHAR(64)   NOT NULL,
		image_url   VARCHAR(1024) NULL,
		KEY idx_services_category (category),
		KEY idx_services_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		created_at     DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at     DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		user_id        CHAR(36)     NULL,
		service        VARCHAR(255) NOT NULL,
		booking_date   DATE         NOT NULL,
		booking_time   VARCHAR(16)  NOT NULL,
		table_number   SMALLINT     NOT NULL,
		customer_name  VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(32)  NOT NULL,
		customer_email VARCHAR(255) NULL,
		status         VARCHAR(16)  NOT NULL DEFAULT 'pending',
		payment_status VARCHAR(16)  NOT NULL DEFAULT 'unpaid',
		payment_id     VARCHAR(64)  NULL,
		active_slot    VARCHAR(64) AS (
			IF(status IN ('cancelled','rejected'), NULL,
			   CONCAT(booking_date, '|', booking_time, '|', table_number))
		) STORED,
		UNIQUE KEY uq_bookings_active_slot (active_slot),
		KEY idx_bookings_slot (booking_date, booking_time, status),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_created (created_at),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
