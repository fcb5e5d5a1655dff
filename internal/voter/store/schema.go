package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS voter_records (
	id           UUID PRIMARY KEY,
	epic_no      TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	gender       TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT '',
	district     TEXT NOT NULL DEFAULT '',
	attributes   JSONB NOT NULL DEFAULT '{}'::jsonb,
	status       TEXT NOT NULL DEFAULT 'active',
	is_disabled  BOOLEAN NOT NULL DEFAULT FALSE,
	disabled_by  TEXT NOT NULL DEFAULT '',
	disabled_at  TIMESTAMPTZ,
	enabled_by   TEXT NOT NULL DEFAULT '',
	enabled_at   TIMESTAMPTZ,
	data_source  TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS voter_records_epic_no_key ON voter_records (epic_no);
CREATE INDEX IF NOT EXISTS voter_records_listing_idx ON voter_records (is_disabled, created_at DESC);
CREATE INDEX IF NOT EXISTS voter_records_state_district_idx ON voter_records (state, district);
`

// EnsurePostgresSchema creates the voter table and indexes if absent.
// There are no migrations; the statement is idempotent.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure voter schema: %w", err)
	}
	return nil
}

// EnsureMongoIndexes creates the unique identifier index and listing indexes.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "epic_no", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("epic_no_unique"),
		},
		{
			Keys:    bson.D{{Key: "isDisabled", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("listing"),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "district", Value: 1}},
			Options: options.Index().SetName("state_district"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure voter indexes: %w", err)
	}
	return nil
}
