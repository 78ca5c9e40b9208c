package testutils

import (
	"context"

	"github.com/srg/astrod/internal/camera"
	"github.com/stretchr/testify/mock"
)

// MockDriver is a testify mock of camera.Driver.
type MockDriver struct {
	mock.Mock
}

var _ camera.Driver = (*MockDriver)(nil)

func (m *MockDriver) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDriver) ReadSetting(ctx context.Context, id string) (camera.Widget, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(camera.Widget)
	return w, args.Error(1)
}

func (m *MockDriver) WriteSetting(ctx context.Context, w camera.Widget) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockDriver) ListSettings(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockDriver) Capture(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDriver) BatteryLevel(ctx context.Context) (uint8, error) {
	args := m.Called(ctx)
	level, _ := args.Get(0).(uint8)
	return level, args.Error(1)
}

func (m *MockDriver) Close() error {
	return m.Called().Error(0)
}

// NewConnectedMockDriver returns a mock whose Connect always succeeds.
func NewConnectedMockDriver() *MockDriver {
	m := &MockDriver{}
	m.On("Connect", mock.Anything).Return(nil).Maybe()
	return m
}
