package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type EntitlementsMock struct{ mock.Mock }

func (m *EntitlementsMock) CanGenerate(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *EntitlementsMock) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *EntitlementsMock) RecordGeneration(ctx context.Context, userID int64, isPro bool) error {
	return m.Called(ctx, userID, isPro).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) GenerateCatImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const userID int64 = 100500

func TestGenerate_EmptyPromptTouchesNothing(t *testing.T) {
	ent := new(EntitlementsMock)
	provider := new(ProviderMock)
	svc := New(ent, provider, newNoopLogger())

	_, err := svc.Generate(context.Background(), userID, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	ent.AssertNotCalled(t, "CanGenerate", mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "GenerateCatImage", mock.Anything, mock.Anything)
}

func TestGenerate_RefusedWhenLimitReached(t *testing.T) {
	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(false, nil)
	provider := new(ProviderMock)
	svc := New(ent, provider, newNoopLogger())

	_, err := svc.Generate(context.Background(), userID, "astronaut")
	assert.ErrorIs(t, err, ErrLimitReached)

	provider.AssertNotCalled(t, "GenerateCatImage", mock.Anything, mock.Anything)
	ent.AssertNotCalled(t, "RecordGeneration", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_SuccessRecordsUsage(t *testing.T) {
	img := []byte{1, 2, 3}

	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(true, nil)
	ent.On("HasActiveSubscription", mock.Anything, userID).Return(false, nil)
	ent.On("RecordGeneration", mock.Anything, userID, false).Return(nil).Once()

	provider := new(ProviderMock)
	provider.On("GenerateCatImage", mock.Anything, "astronaut").Return(img, nil)

	svc := New(ent, provider, newNoopLogger())
	got, err := svc.Generate(context.Background(), userID, "astronaut")
	require.NoError(t, err)
	assert.Equal(t, img, got)
	ent.AssertExpectations(t)
}

func TestGenerate_ProSubscriberIsUnmetered(t *testing.T) {
	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(true, nil)
	ent.On("HasActiveSubscription", mock.Anything, userID).Return(true, nil)
	ent.On("RecordGeneration", mock.Anything, userID, true).Return(nil).Once()

	provider := new(ProviderMock)
	provider.On("GenerateCatImage", mock.Anything, "wizard").Return([]byte{1}, nil)

	svc := New(ent, provider, newNoopLogger())
	_, err := svc.Generate(context.Background(), userID, "wizard")
	require.NoError(t, err)
	ent.AssertExpectations(t)
}

// Провайдер не вернул ни картинку, ни заглушку: квота не расходуется,
// пользователь может повторить запрос без потерь.
func TestGenerate_ProviderFailureDoesNotRecord(t *testing.T) {
	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(true, nil)
	ent.On("HasActiveSubscription", mock.Anything, userID).Return(false, nil)

	provider := new(ProviderMock)
	provider.On("GenerateCatImage", mock.Anything, "wizard").
		Return(nil, errors.New("provider down"))

	svc := New(ent, provider, newNoopLogger())
	_, err := svc.Generate(context.Background(), userID, "wizard")
	assert.Error(t, err)

	ent.AssertNotCalled(t, "RecordGeneration", mock.Anything, mock.Anything, mock.Anything)
}

// Заглушка — это тоже доставленные байты, использование списывается.
func TestGenerate_PlaceholderDeliveryStillMeters(t *testing.T) {
	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(true, nil)
	ent.On("HasActiveSubscription", mock.Anything, userID).Return(false, nil)
	ent.On("RecordGeneration", mock.Anything, userID, false).Return(nil).Once()

	provider := new(ProviderMock)
	// провайдер внутри себя уже подменил ответ заглушкой
	provider.On("GenerateCatImage", mock.Anything, "wizard").Return([]byte{0x89}, nil)

	svc := New(ent, provider, newNoopLogger())
	_, err := svc.Generate(context.Background(), userID, "wizard")
	require.NoError(t, err)
	ent.AssertExpectations(t)
}

func TestGenerate_RecordFailureStillDeliversImage(t *testing.T) {
	img := []byte{1, 2, 3}

	ent := new(EntitlementsMock)
	ent.On("CanGenerate", mock.Anything, userID).Return(true, nil)
	ent.On("HasActiveSubscription", mock.Anything, userID).Return(false, nil)
	ent.On("RecordGeneration", mock.Anything, userID, false).Return(errors.New("storage down"))

	provider := new(ProviderMock)
	provider.On("GenerateCatImage", mock.Anything, "wizard").Return(img, nil)

	svc := New(ent, provider, newNoopLogger())
	got, err := svc.Generate(context.Background(), userID, "wizard")
	require.NoError(t, err)
	assert.Equal(t, img, got)
}
