package storage

import (
	"context"
	"fmt"

	"github.com/woodshedhq/woodshed/internal/models"
)

// GetOrCreateProfile finds or creates a profile by login. Updates last_seen
// and display_name on each call.
func (db *DB) GetOrCreateProfile(ctx context.Context, login, displayName, role string) (*models.ProfileRow, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, login, display_name, role)
		VALUES (gen_random_uuid()::text, $1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), profiles.display_name)
		RETURNING id, login, display_name, role, level, last_seen
	`, login, displayName, role)

	var p models.ProfileRow
	if err := row.Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.Level, &p.LastSeen); err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns all profiles, optionally filtered by role.
func (db *DB) ListProfiles(ctx context.Context, role string) ([]models.ProfileRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, login, display_name, role, level, last_seen
		 FROM profiles
		 WHERE $1 = '' OR role = $1
		 ORDER BY login`, role)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var result []models.ProfileRow
	for rows.Next() {
		var p models.ProfileRow
		if err := rows.Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.Level, &p.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetProfile retrieves a profile by id.
func (db *DB) GetProfile(ctx context.Context, id string) (*models.ProfileRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, login, display_name, role, level, last_seen
		 FROM profiles WHERE id = $1`, id)

	var p models.ProfileRow
	if err := row.Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.Level, &p.LastSeen); err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}
