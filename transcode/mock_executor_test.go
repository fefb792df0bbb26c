// SPDX-License-Identifier: EPL-2.0

package transcode_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/ik5/audfeat/transcode"
)

// MockCommandExecutor implements the CommandExecutor interface for testing
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Command(ctx context.Context, name string, args ...string) transcode.Commander {
	mockArgs := m.Called(ctx, name, args)
	return mockArgs.Get(0).(transcode.Commander)
}

// MockCommander implements the Commander interface for testing
type MockCommander struct {
	mock.Mock
	stderr io.Writer
}

func (m *MockCommander) SetStderr(w io.Writer) {
	m.stderr = w
	m.Called(w)
}

func (m *MockCommander) Run() error {
	args := m.Called()
	return args.Error(0)
}
