package di

import (
	"testing"

	"sellerlift/backend/pkg/config"
	"sellerlift/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UsesProvidedLogger(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})

	container := New(nil, nil, &config.Config{}, log)

	require.NotNil(t, container)
	assert.Same(t, log, container.Logger)
}
