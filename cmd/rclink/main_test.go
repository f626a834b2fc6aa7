package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type hookProvider struct {
	hooks []func()
}

func (h *hookProvider) AfterUpdate(exec func()) error {
	h.hooks = append(h.hooks, exec)
	return nil
}

func TestWatchLinkChanges(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	provider := &hookProvider{}

	require.NoError(t, watchLinkChanges(provider, zap.New(core)))
	require.Len(t, provider.hooks, 1)

	provider.hooks[0]()
	provider.hooks[0]()
	assert.Equal(t, 2, logs.FilterMessage("roster links changed").Len())
}

func TestWatchLinkChangesWithoutHooks(t *testing.T) {
	assert.NoError(t, watchLinkChanges(struct{}{}, zap.NewNop()))
}
