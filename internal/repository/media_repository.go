package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func (r *MediaRepository) Create(ctx context.Context, asset models.MediaAsset) error {
	const query = `
		INSERT INTO media_assets (id, owner_id, bucket, object_key, mime_type, format, size_bytes, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.OwnerID,
		asset.Bucket,
		asset.ObjectKey,
		asset.MIMEType,
		asset.Format,
		asset.SizeBytes,
		asset.Checksum,
		asset.CreatedAt,
	)
	return err
}

func (r *MediaRepository) List(ctx context.Context, limit int, offset int) ([]models.MediaAsset, error) {
	const query = `
		SELECT id, owner_id, bucket, object_key, mime_type, format, size_bytes, checksum, created_at
		FROM media_assets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]models.MediaAsset, 0)
	for rows.Next() {
		var a models.MediaAsset
		if err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Bucket,
			&a.ObjectKey,
			&a.MIMEType,
			&a.Format,
			&a.SizeBytes,
			&a.Checksum,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
