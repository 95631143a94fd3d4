package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/llm"
)

// MockDetector is a mock implementation of detection.Detector
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockGenerator is a mock implementation of llm.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, schema llm.Schema) (map[string]any, error) {
	args := m.Called(ctx, prompt, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// MockVerifier is a mock implementation of identity.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, idToken string) (*identity.Claims, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Claims), args.Error(1)
}

// MockImageStore is a mock implementation of storage.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) URL(ref string) string {
	args := m.Called(ref)
	return args.String(0)
}
