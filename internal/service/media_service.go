package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/media/sniffer"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrFileTooLarge = errors.New("file too large")

type MediaService struct {
	assets   MediaStore
	store    ObjectStore
	maxBytes int64
	log      zerolog.Logger
}

func NewMediaService(assets MediaStore, store ObjectStore, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{
		assets:   assets,
		store:    store,
		maxBytes: maxBytes,
		log:      log.With().Str("service", "media").Logger(),
	}
}

type UploadInput struct {
	OwnerID      string
	File         io.Reader
	DeclaredMIME string
}

type UploadResult struct {
	Asset models.MediaAsset `json:"asset"`
	URL   string            `json:"url"`
}

// UploadImage stores a raster image after checking its real type.
func (s *MediaService) UploadImage(ctx context.Context, in UploadInput) (UploadResult, error) {
	if in.File == nil {
		return UploadResult{}, invalid("file is required")
	}

	// One extra byte tells an exact-limit file from an oversized one.
	data, err := io.ReadAll(io.LimitReader(in.File, s.maxBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, invalid("empty file")
	}
	if int64(len(data)) > s.maxBytes {
		return UploadResult{}, ErrFileTooLarge
	}

	kind, err := sniffer.Detect(data)
	if err != nil {
		return UploadResult{}, invalid("%v", err)
	}
	declared := sniffer.NormalizeMIME(in.DeclaredMIME)
	if declared != "" && declared != "application/octet-stream" && declared != kind.MIME {
		return UploadResult{}, invalid("content type mismatch: declared %s, actual %s", declared, kind.MIME)
	}

	id := ids.New()
	now := time.Now().UTC()
	key := path.Join(now.Format("2006/01/02"), id+"."+kind.Extension())

	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), kind.MIME); err != nil {
		return UploadResult{}, err
	}

	sum := sha256.Sum256(data)
	asset := models.MediaAsset{
		ID:        id,
		OwnerID:   in.OwnerID,
		Bucket:    s.store.Bucket(),
		ObjectKey: key,
		MIMEType:  kind.MIME,
		Format:    string(kind.Type),
		SizeBytes: int64(len(data)),
		Checksum:  sum[:],
		CreatedAt: now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return UploadResult{}, fmt.Errorf("save metadata: %w", err)
	}

	s.log.Debug().Str("asset_id", id).Str("key", key).Int64("size", asset.SizeBytes).Msg("image stored")
	return UploadResult{Asset: asset, URL: s.store.PublicURL(key)}, nil
}

func (s *MediaService) List(ctx context.Context, limit, offset int) ([]models.MediaAsset, error) {
	if offset < 0 {
		offset = 0
	}
	return s.assets.List(ctx, clampLimit(limit, 50, 200), offset)
}
