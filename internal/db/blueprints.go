package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/calebstern/habitforge/internal/types"
)

// CreateBlueprint inserts a new pending blueprint record.
func (db *DB) CreateBlueprint(ctx context.Context, input *BlueprintCreateInput) (*types.Blueprint, error) {
	bp := types.Blueprint{
		UserID:        input.UserID,
		Goal:          input.Goal,
		ContentSource: input.ContentSource,
		ContentType:   input.ContentType,
		Status:        types.StatusPending,
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO blueprints (user_id, goal, content_source, content_type, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id, created_at`,
		input.UserID, input.Goal, input.ContentSource, input.ContentType,
	).Scan(&bp.ID, &bp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create blueprint: %w", err)
	}

	return &bp, nil
}

// GetBlueprint retrieves a blueprint by ID. Returns nil when not found.
func (db *DB) GetBlueprint(ctx context.Context, id uuid.UUID) (*types.Blueprint, error) {
	var bp types.Blueprint
	var outputJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, goal, content_source, content_type, status, ai_output, created_at
		 FROM blueprints WHERE id = $1`,
		id,
	).Scan(&bp.ID, &bp.UserID, &bp.Goal, &bp.ContentSource, &bp.ContentType,
		&bp.Status, &outputJSON, &bp.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get blueprint: %w", err)
	}

	if outputJSON != nil {
		var payload types.BlueprintPayload
		if err := json.Unmarshal(outputJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode blueprint output: %w", err)
		}
		bp.AIOutput = &payload
	}

	return &bp, nil
}

// ListBlueprintsByUser retrieves a user's blueprints, newest first. The
// ai_output column is omitted; clients fetch individual blueprints for the
// full payload.
func (db *DB) ListBlueprintsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.Blueprint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, goal, content_source, content_type, status, created_at
		 FROM blueprints
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}
	defer rows.Close()

	var blueprints []types.Blueprint
	for rows.Next() {
		var bp types.Blueprint
		if err := rows.Scan(&bp.ID, &bp.UserID, &bp.Goal, &bp.ContentSource,
			&bp.ContentType, &bp.Status, &bp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blueprint: %w", err)
		}
		blueprints = append(blueprints, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blueprints: %w", err)
	}

	return blueprints, nil
}

// CompleteBlueprint attaches the generated payload and marks the record
// completed.
func (db *DB) CompleteBlueprint(ctx context.Context, id uuid.UUID, payload *types.BlueprintPayload) error {
	outputJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal blueprint output: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE blueprints SET status = 'completed', ai_output = $1 WHERE id = $2`,
		outputJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete blueprint: %w", err)
	}
	return nil
}

// FailBlueprint marks the record failed. The payload stays null.
func (db *DB) FailBlueprint(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE blueprints SET status = 'failed', ai_output = NULL WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark blueprint failed: %w", err)
	}
	return nil
}

// ResetBlueprint moves a failed blueprint back to pending for a
// user-triggered retry. Returns false when the record was not in the failed
// state.
func (db *DB) ResetBlueprint(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE blueprints SET status = 'pending', ai_output = NULL
		 WHERE id = $1 AND status = 'failed'`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reset blueprint: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteBlueprint removes a blueprint owned by the given user. Retry jobs
// cascade. Returns false when no matching record existed.
func (db *DB) DeleteBlueprint(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM blueprints WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete blueprint: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
