package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/application/common"
)

type pingCommand struct{ Value string }

type pingHandler struct{}

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*pingCommand)
	if !ok {
		return nil, errors.New("invalid request type")
	}
	return "pong:" + cmd.Value, nil
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.messages = append(l.messages, level+" "+message)
}

func TestMediator_SendDispatchesToRegisteredHandler(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &pingCommand{Value: "a"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	_, err := m.Send(context.Background(), struct{}{})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewaresRunInRegistrationOrder(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	var order []string
	trace := func(name string) common.Middleware {
		return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			order = append(order, name+">")
			resp, err := next(ctx, request)
			order = append(order, "<"+name)
			return resp, err
		}
	}
	m.Use(trace("outer"))
	m.Use(trace("inner"))

	_, err := m.Send(context.Background(), &pingCommand{})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, order)
}

func TestLoggingMiddleware_LogsThroughContextLogger(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))
	m.Use(common.LoggingMiddleware)
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	_, err := m.Send(ctx, &pingCommand{})

	require.NoError(t, err)
	assert.Equal(t, []string{"DEBUG Request handled"}, logger.messages)
	assert.Equal(t, "pingCommand", common.RequestName(&pingCommand{}))
}
