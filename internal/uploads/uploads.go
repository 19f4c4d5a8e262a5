// Package uploads validates user-supplied images by content and hands them to
// the configured storage.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Kind string

const (
	KindProductImage Kind = "images"
	KindEvidence     Kind = "evidence"
)

var allowedByKind = map[Kind][]string{
	KindProductImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	KindEvidence:     {"image/jpeg", "image/png"},
}

var describedByKind = map[Kind]string{
	KindProductImage: "jpeg, png, gif, or webp images",
	KindEvidence:     "jpeg or png images",
}

type Service struct {
	store  storage.Store
	limits map[Kind]int64
}

func NewService(store storage.Store, cfg config.UploadsConfig) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &Service{
		store: store,
		limits: map[Kind]int64{
			KindProductImage: megabytes(cfg.MaxProductImageMB),
			KindEvidence:     megabytes(cfg.MaxEvidenceMB),
		},
	}, nil
}

// Limit is the byte ceiling for kind.
func (s *Service) Limit(kind Kind) int64 {
	return s.limits[kind]
}

// Save sniffs body, rejects disallowed or oversized content, and stores it
// under a collision-free name derived from originalName. It returns the
// public path.
func (s *Service) Save(ctx context.Context, kind Kind, originalName string, body io.Reader) (string, error) {
	limit, ok := s.limits[kind]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "unknown upload kind")
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > limit {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file too large").WithDetails(map[string]any{"max_bytes": limit})
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	detected := mimetype.Detect(data)
	if !allowed(kind, detected) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "only "+describedByKind[kind]+" are allowed").
			WithDetails(map[string]any{"detected": detected.String()})
	}

	name := fileName(originalName, detected.Extension())
	publicPath, err := s.store.Save(ctx, string(kind), name, bytes.NewReader(data))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}
	return publicPath, nil
}

// Discard removes a previously saved file. Missing files are ignored.
func (s *Service) Discard(ctx context.Context, publicPath string) error {
	if publicPath == "" {
		return nil
	}
	if err := s.store.Delete(ctx, publicPath); err != nil && err != storage.ErrNotFound {
		return err
	}
	return nil
}

func allowed(kind Kind, detected *mimetype.MIME) bool {
	for _, candidate := range allowedByKind[kind] {
		if detected.Is(candidate) {
			return true
		}
	}
	return false
}

func fileName(original, ext string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(original, "\\", "/")), path.Ext(original))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" || base == "." {
		base = "upload"
	}
	return base + "-" + uuid.NewString() + ext
}

func megabytes(mb int) int64 {
	if mb <= 0 {
		mb = 1
	}
	return int64(mb) << 20
}
