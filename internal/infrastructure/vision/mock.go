package vision

import (
	"context"
	"fmt"

	apperrors "snapstock/pkg/errors"
)

// MockCaptioner answers without a network call. Used in development and tests.
type MockCaptioner struct {
	model string
}

func NewMockCaptioner(model string) *MockCaptioner {
	return &MockCaptioner{model: model}
}

func (g *MockCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	if !supportedMimeTypes[mimeType] {
		return "", apperrors.UnsupportedMediaType(fmt.Sprintf("Mime type %s is not supported for captioning", mimeType))
	}

	return "Title: Sample Product\nDescription: A placeholder description generated without calling the vision service.", nil
}

func (g *MockCaptioner) Model() string {
	return g.model + "-mock"
}
