package conferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusbridge/connect/internal/models"
)

// Repository handles conference and synced-recording persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a conference repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new conference record.
func (r *Repository) Create(ctx context.Context, conf *models.Conference) error {
	settings, err := marshalSettings(conf.Settings)
	if err != nil {
		return err
	}
	const q = `INSERT INTO conferences (title, course_code, parent_course_code, root_account_global_id, conference_key, start_at, end_at, created_by, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, conf.Title, conf.CourseCode, conf.ParentCourseCode, conf.RootAccountGlobalID,
		conf.ConferenceKey, conf.StartAt, conf.EndAt, conf.CreatedBy, settings).
		Scan(&conf.ID, &conf.CreatedAt, &conf.UpdatedAt)
}

// GetByID returns a conference by ID, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Conference, error) {
	const q = `SELECT id, title, COALESCE(course_code,''), COALESCE(parent_course_code,''), root_account_global_id,
		COALESCE(conference_key,''), start_at, end_at, created_by, settings, created_at, updated_at
		FROM conferences WHERE id = $1`
	var conf models.Conference
	var settings []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(&conf.ID, &conf.Title, &conf.CourseCode, &conf.ParentCourseCode,
		&conf.RootAccountGlobalID, &conf.ConferenceKey, &conf.StartAt, &conf.EndAt, &conf.CreatedBy,
		&settings, &conf.CreatedAt, &conf.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := unmarshalSettings(settings, &conf.Settings); err != nil {
		return nil, err
	}
	return &conf, nil
}

// List returns all conferences, newest start first.
func (r *Repository) List(ctx context.Context) ([]models.Conference, error) {
	const q = `SELECT id, title, COALESCE(course_code,''), COALESCE(parent_course_code,''), root_account_global_id,
		COALESCE(conference_key,''), start_at, end_at, created_by, settings, created_at, updated_at
		FROM conferences ORDER BY start_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Conference
	for rows.Next() {
		var conf models.Conference
		var settings []byte
		if err := rows.Scan(&conf.ID, &conf.Title, &conf.CourseCode, &conf.ParentCourseCode,
			&conf.RootAccountGlobalID, &conf.ConferenceKey, &conf.StartAt, &conf.EndAt, &conf.CreatedBy,
			&settings, &conf.CreatedAt, &conf.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalSettings(settings, &conf.Settings); err != nil {
			return nil, err
		}
		list = append(list, conf)
	}
	return list, rows.Err()
}

// Save persists the mutable provisioning state of a conference: the
// resolved conference key and the settings bag. Implements the controller
// Store boundary.
func (r *Repository) Save(ctx context.Context, conf *models.Conference) error {
	settings, err := marshalSettings(conf.Settings)
	if err != nil {
		return err
	}
	const q = `UPDATE conferences SET conference_key = $1, settings = $2, updated_at = NOW() WHERE id = $3`
	_, err = r.pool.Exec(ctx, q, conf.ConferenceKey, settings, conf.ID)
	return err
}

// UpsertRecording stores one synced archive record keyed by its remote id.
func (r *Repository) UpsertRecording(ctx context.Context, rec *models.Recording) error {
	const q = `INSERT INTO recordings (conference_id, sco_id, title, duration_minutes, playback_url, created_at, updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (conference_id, sco_id) DO UPDATE
		SET title = EXCLUDED.title, duration_minutes = EXCLUDED.duration_minutes, playback_url = EXCLUDED.playback_url,
			updated_at = EXCLUDED.updated_at, synced_at = NOW()
		RETURNING id`
	return r.pool.QueryRow(ctx, q, rec.ConferenceID, rec.ScoID, rec.Title, rec.DurationMinutes,
		rec.PlaybackURL, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID)
}

// ListRecordings returns the synced archives for a conference.
func (r *Repository) ListRecordings(ctx context.Context, conferenceID int64) ([]models.Recording, error) {
	const q = `SELECT id, conference_id, sco_id, title, duration_minutes, playback_url, created_at, updated_at, synced_at
		FROM recordings WHERE conference_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Recording
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.ConferenceID, &rec.ScoID, &rec.Title, &rec.DurationMinutes,
			&rec.PlaybackURL, &rec.CreatedAt, &rec.UpdatedAt, &rec.SyncedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func marshalSettings(s models.Settings) ([]byte, error) {
	if s == nil {
		s = models.Settings{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return b, nil
}

func unmarshalSettings(b []byte, s *models.Settings) error {
	if len(b) == 0 {
		*s = models.Settings{}
		return nil
	}
	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	return nil
}
