package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/skyfence-labs/skyfence/internal/track"
)

// TrackStore is the gateway the evaluator depends on. The engine itself uses
// only these three calls; everything else on SQLiteStore is producer and
// operator surface.
type TrackStore interface {
	// FetchLiveTracks returns the current snapshot of all tracks still in
	// the LIVE state. The snapshot may be stale by the time writes are
	// issued; the engine recomputes from scratch every cycle.
	FetchLiveTracks(ctx context.Context) ([]track.Track, error)

	// PersistScore writes a new threat score for a track. Idempotent.
	PersistScore(ctx context.Context, trackID int64, score int) error

	// PersistStatus writes a new lifecycle state for a track. Idempotent.
	// A regression from ENGAGED back to LIVE is rejected as a no-op.
	PersistStatus(ctx context.Context, trackID int64, state track.State) error
}

// SQLiteStore implements TrackStore over the shared tracks table.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore creates a SQLiteStore backed by the given database.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const trackColumns = `
	track_id, external_ref, pos_x, pos_y, speed_mps,
	identification, threat_score, state, created_unix, updated_unix
`

func scanTrack(scanner interface{ Scan(...any) error }) (track.Track, error) {
	var t track.Track
	var ident, state string
	if err := scanner.Scan(
		&t.ID, &t.ExternalRef, &t.X, &t.Y, &t.SpeedMps,
		&ident, &t.ThreatScore, &state, &t.CreatedUnix, &t.UpdatedUnix,
	); err != nil {
		return track.Track{}, err
	}

	// Carry raw strings through as-is; the evaluator decides whether an
	// unknown identification is a skippable data error. State however must
	// parse: a row with an unknown state would otherwise leak past the
	// LIVE-only fetch filters.
	t.Identification = track.Identification(ident)
	parsedState, err := track.ParseState(state)
	if err != nil {
		return track.Track{}, err
	}
	t.State = parsedState
	return t, nil
}

// FetchLiveTracks returns every track whose state is LIVE, ordered by ID for
// deterministic cycle processing.
func (s *SQLiteStore) FetchLiveTracks(ctx context.Context) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE state = ?
		ORDER BY track_id
	`, string(track.StateLive))
	if err != nil {
		return nil, fmt.Errorf("fetch live tracks: %w", err)
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan live track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate live tracks: %w", err)
	}
	return tracks, nil
}

// PersistScore writes a new threat score. The guard on state means a track
// engaged between fetch and write is left untouched: the engine is done with
// it the moment it leaves LIVE.
func (s *SQLiteStore) PersistScore(ctx context.Context, trackID int64, score int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks
		SET threat_score = ?, updated_unix = UNIXEPOCH('subsec')
		WHERE track_id = ? AND state = ?
	`, score, trackID, string(track.StateLive))
	if err != nil {
		return fmt.Errorf("persist score for track %d: %w", trackID, err)
	}
	return nil
}

// PersistStatus writes a new lifecycle state. The one-way LIVE->ENGAGED
// invariant belongs to the escalation policy, but the store defensively
// refuses to regress an engaged track: writing LIVE over ENGAGED is a no-op.
func (s *SQLiteStore) PersistStatus(ctx context.Context, trackID int64, state track.State) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks
		SET state = ?, updated_unix = UNIXEPOCH('subsec')
		WHERE track_id = ? AND state != ?
	`, string(state), trackID, string(track.StateEngaged))
	if err != nil {
		return fmt.Errorf("persist status for track %d: %w", trackID, err)
	}
	return nil
}

// Producer/operator surface. The radar feed and the HTTP API create and steer
// tracks through these; the evaluator never calls them.

// InsertTrack creates a new track row. A missing external ref gets a fresh
// UUID; a missing state starts LIVE. The assigned row ID is written back.
func (s *SQLiteStore) InsertTrack(ctx context.Context, t *track.Track) error {
	if t.ExternalRef == "" {
		t.ExternalRef = uuid.New().String()
	}
	if t.State == "" {
		t.State = track.StateLive
	}
	if t.Identification == "" {
		t.Identification = track.IdentUnknown
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (external_ref, pos_x, pos_y, speed_mps, identification, threat_score, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ExternalRef, t.X, t.Y, t.SpeedMps, string(t.Identification), t.ThreatScore, string(t.State))
	if err != nil {
		return fmt.Errorf("insert track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get track insert ID: %w", err)
	}
	t.ID = id
	return nil
}

// UpdateTrackKinematics moves a track to a new position and speed.
func (s *SQLiteStore) UpdateTrackKinematics(ctx context.Context, trackID int64, x, y, speedMps float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks
		SET pos_x = ?, pos_y = ?, speed_mps = ?, updated_unix = UNIXEPOCH('subsec')
		WHERE track_id = ?
	`, x, y, speedMps, trackID)
	if err != nil {
		return fmt.Errorf("update track %d kinematics: %w", trackID, err)
	}
	return nil
}

// SetIdentification records an operator IFF override. It deliberately leaves
// state alone: re-identifying an engaged track as friendly does not disengage
// it.
func (s *SQLiteStore) SetIdentification(ctx context.Context, trackID int64, id track.Identification) error {
	if _, err := track.ParseIdentification(string(id)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks
		SET identification = ?, updated_unix = UNIXEPOCH('subsec')
		WHERE track_id = ?
	`, string(id), trackID)
	if err != nil {
		return fmt.Errorf("set identification for track %d: %w", trackID, err)
	}
	return nil
}

// GetTrack returns a single track by row ID, or sql.ErrNoRows.
func (s *SQLiteStore) GetTrack(ctx context.Context, trackID int64) (*track.Track, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE track_id = ?
	`, trackID)

	t, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get track %d: %w", trackID, err)
	}
	return &t, nil
}

// ListTracks returns all tracks, optionally filtered by state ("" for all),
// newest first.
func (s *SQLiteStore) ListTracks(ctx context.Context, state track.State) ([]track.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks`
	var args []any
	if state != "" {
		query += ` WHERE state = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY track_id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
