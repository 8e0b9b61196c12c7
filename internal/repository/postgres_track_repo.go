package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pulsebook/storefront/internal/model"
)

// PostgresTrackRepo はPostgreSQLを使用したトラックリポジトリ。
type PostgresTrackRepo struct {
	db *sql.DB
}

// NewPostgresTrackRepo はPostgresTrackRepoを生成する。
func NewPostgresTrackRepo(db *sql.DB) *PostgresTrackRepo {
	return &PostgresTrackRepo{db: db}
}

// List は全トラックを新しい順に返す。
func (r *PostgresTrackRepo) List(ctx context.Context) ([]*model.Track, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, artist, duration, cover, audio_url, genre, year, price, is_adult_content, created_at
		 FROM tracks ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	tracks := []*model.Track{}
	for rows.Next() {
		t := &model.Track{}
		var year sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Duration, &t.Cover, &t.AudioURL,
			&t.Genre, &year, &t.Price, &t.IsAdultContent, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.Year = intPtr(year)
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}

	return tracks, nil
}

// Create はトラックを作成する。
func (r *PostgresTrackRepo) Create(ctx context.Context, track *model.Track) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tracks (title, artist, duration, cover, audio_url, genre, year, price, is_adult_content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		track.Title, track.Artist, track.Duration, track.Cover, track.AudioURL,
		track.Genre, nullIntPtr(track.Year), track.Price, track.IsAdultContent,
	).Scan(&track.ID, &track.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

// Update はトラックを更新する。
func (r *PostgresTrackRepo) Update(ctx context.Context, track *model.Track) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tracks
		 SET title = $1, artist = $2, duration = $3, cover = $4, audio_url = $5,
		     genre = $6, year = $7, price = $8, is_adult_content = $9
		 WHERE id = $10`,
		track.Title, track.Artist, track.Duration, track.Cover, track.AudioURL,
		track.Genre, nullIntPtr(track.Year), track.Price, track.IsAdultContent, track.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	return requireAffected(result)
}

// Delete はトラックを削除する。
func (r *PostgresTrackRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return requireAffected(result)
}

// Count はトラック数を返す。
func (r *PostgresTrackRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ TrackRepository = (*PostgresTrackRepo)(nil)
