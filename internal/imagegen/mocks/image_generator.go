package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Mock ImageGenerator
type ImageGenerator struct {
	mock.Mock
}

func (m *ImageGenerator) GenerateBackgroundImage(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}
func (m *ImageGenerator) GenerateCharacterImage(ctx context.Context, character, emotion string) (string, error) {
	args := m.Called(ctx, character, emotion)
	return args.String(0), args.Error(1)
}

// Mock ImageTransformer
type ImageTransformer struct {
	mock.Mock
}

func (m *ImageTransformer) TransformImage(ctx context.Context, imageURL, prompt string) ([]string, error) {
	args := m.Called(ctx, imageURL, prompt)
	urls, _ := args.Get(0).([]string)
	return urls, args.Error(1)
}
