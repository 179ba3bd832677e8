// Package storage implements the image upload actions over the object store.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"strings"

	"archive-backend/application/actions"
	"archive-backend/application/ports"
	pkgerrors "archive-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultFolder holds uploads that name no folder
	DefaultFolder = "images"
	// MaxImageBytes bounds a decoded upload
	MaxImageBytes = 10 << 20
)

// Module serves the storage actions
type Module struct {
	objects ports.ObjectStore
	newID   func() string
	logger  *zap.Logger
}

// NewModule creates the storage module
func NewModule(objects ports.ObjectStore, logger *zap.Logger) *Module {
	return &Module{
		objects: objects,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Actions returns the storage registrations
func (m *Module) Actions() []actions.Registration {
	return []actions.Registration{
		actions.Handle(actions.UploadImage, m.UploadImage),
		actions.Handle(actions.UpdateImage, m.UpdateImage),
		actions.Handle(actions.DeleteImage, m.DeleteImage),
	}
}

// UploadPayload is a base64 image, optionally a data URL
type UploadPayload struct {
	Data        string `json:"data" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	Filename    string `json:"filename"`
	Folder      string `json:"folder"`
}

// UpdatePayload replaces the object at key
type UpdatePayload struct {
	Key         string `json:"key" validate:"required"`
	Data        string `json:"data" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

// KeyPayload addresses a stored object
type KeyPayload struct {
	Key string `json:"key" validate:"required"`
}

// ImageResult locates a stored image
type ImageResult struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	URL     string `json:"url"`
}

// SuccessResult acknowledges a delete
type SuccessResult struct {
	Success bool `json:"success"`
}

// UploadImage stores a new image under {folder}/{uuid}{ext}
func (m *Module) UploadImage(ctx context.Context, p UploadPayload) (ImageResult, error) {
	body, err := decodeImage(p.Data, p.ContentType)
	if err != nil {
		return ImageResult{}, err
	}
	folder, err := cleanFolder(p.Folder)
	if err != nil {
		return ImageResult{}, err
	}

	key := folder + "/" + m.newID() + extension(p.Filename, p.ContentType)
	if err := m.put(ctx, key, p.ContentType, body); err != nil {
		return ImageResult{}, err
	}

	m.logger.Info("Image uploaded", zap.String("key", key), zap.Int("bytes", len(body)))
	return ImageResult{Success: true, Key: key, URL: m.objects.URL(key)}, nil
}

// UpdateImage overwrites an existing key, keeping its public URL stable
func (m *Module) UpdateImage(ctx context.Context, p UpdatePayload) (ImageResult, error) {
	key, err := cleanKey(p.Key)
	if err != nil {
		return ImageResult{}, err
	}
	body, err := decodeImage(p.Data, p.ContentType)
	if err != nil {
		return ImageResult{}, err
	}
	if err := m.put(ctx, key, p.ContentType, body); err != nil {
		return ImageResult{}, err
	}

	m.logger.Info("Image updated", zap.String("key", key))
	return ImageResult{Success: true, Key: key, URL: m.objects.URL(key)}, nil
}

// DeleteImage removes an object
func (m *Module) DeleteImage(ctx context.Context, p KeyPayload) (SuccessResult, error) {
	key, err := cleanKey(p.Key)
	if err != nil {
		return SuccessResult{}, err
	}
	if err := m.objects.Delete(ctx, key); err != nil {
		return SuccessResult{}, pkgerrors.NewExternalError("object store", err)
	}
	m.logger.Info("Image deleted", zap.String("key", key))
	return SuccessResult{Success: true}, nil
}

func (m *Module) put(ctx context.Context, key, contentType string, body []byte) error {
	if err := m.objects.Put(ctx, key, contentType, bytes.NewReader(body), int64(len(body))); err != nil {
		return pkgerrors.NewExternalError("object store", err)
	}
	return nil
}

func decodeImage(data, contentType string) ([]byte, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unsupported content type %q", contentType))
	}

	// accept data:image/png;base64,... as sent by browser file readers
	if i := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+len(";base64,"):]
	}

	body, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, pkgerrors.NewValidationError("data is not valid base64")
	}
	if len(body) == 0 {
		return nil, pkgerrors.NewValidationError("image is empty")
	}
	if len(body) > MaxImageBytes {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}
	return body, nil
}

func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return DefaultFolder, nil
	}
	cleaned := path.Clean(folder)
	if cleaned != folder || strings.HasPrefix(cleaned, "..") {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid folder %q", folder))
	}
	return cleaned, nil
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid key %q", key))
	}
	return cleaned, nil
}

func extension(filename, contentType string) string {
	if ext := path.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
