package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	pkgerrors "archive-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, key, contentType, data, size)
	return args.Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func newTestModule(objects *MockObjectStore) *Module {
	m := NewModule(objects, zap.NewNop())
	m.newID = func() string { return "fixed" }
	return m
}

var png = []byte{0x89, 'P', 'N', 'G'}

func TestUploadImage(t *testing.T) {
	// Arrange
	objects := new(MockObjectStore)
	objects.On("Put", mock.Anything, "covers/fixed.png", "image/png", png, int64(len(png))).Return(nil)
	m := newTestModule(objects)

	// Act
	res, err := m.UploadImage(context.Background(), UploadPayload{
		Data:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ContentType: "image/png",
		Filename:    "Cover.PNG",
		Folder:      "/covers/",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ImageResult{Success: true, Key: "covers/fixed.png", URL: "https://cdn.example.com/covers/fixed.png"}, res)
	objects.AssertExpectations(t)
}

func TestUploadImageDefaultFolder(t *testing.T) {
	objects := new(MockObjectStore)
	objects.On("Put", mock.Anything, "images/fixed.jpg", "image/jpeg", png, int64(len(png))).Return(nil)
	m := newTestModule(objects)

	res, err := m.UploadImage(context.Background(), UploadPayload{
		Data:        base64.StdEncoding.EncodeToString(png),
		ContentType: "image/jpeg",
		Filename:    "photo.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "images/fixed.jpg", res.Key)
	objects.AssertExpectations(t)
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload UploadPayload
	}{
		{"not an image", UploadPayload{Data: base64.StdEncoding.EncodeToString(png), ContentType: "application/pdf"}},
		{"bad base64", UploadPayload{Data: "%%%", ContentType: "image/png"}},
		{"folder escape", UploadPayload{Data: base64.StdEncoding.EncodeToString(png), ContentType: "image/png", Folder: "../secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := new(MockObjectStore)
			m := newTestModule(objects)

			_, err := m.UploadImage(context.Background(), tt.payload)

			assert.True(t, pkgerrors.IsValidation(err))
			objects.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateImageKeepsKey(t *testing.T) {
	objects := new(MockObjectStore)
	objects.On("Put", mock.Anything, "images/a.png", "image/png", png, int64(len(png))).Return(nil)
	m := newTestModule(objects)

	res, err := m.UpdateImage(context.Background(), UpdatePayload{
		Key:         "/images/a.png",
		Data:        base64.StdEncoding.EncodeToString(png),
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "images/a.png", res.Key)
	objects.AssertExpectations(t)
}

func TestDeleteImage(t *testing.T) {
	objects := new(MockObjectStore)
	objects.On("Delete", mock.Anything, "images/a.png").Return(nil).Once()
	objects.On("Delete", mock.Anything, "images/b.png").Return(errors.New("access denied")).Once()
	m := newTestModule(objects)

	res, err := m.DeleteImage(context.Background(), KeyPayload{Key: "images/a.png"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = m.DeleteImage(context.Background(), KeyPayload{Key: "images/b.png"})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))

	_, err = m.DeleteImage(context.Background(), KeyPayload{Key: "../etc/passwd"})
	assert.True(t, pkgerrors.IsValidation(err))
	objects.AssertExpectations(t)
}
