package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/config"
)

func testCommands() []config.CommandConfig {
	return []config.CommandConfig{
		{ID: 1, Name: "ban", Aliases: []string{"unban"}},
		{ID: 2, Name: "remind", Aliases: []string{"remindme", "Ping"}},
		{ID: 3, Name: "ping"},
	}
}

func TestCommandRegistry_GetCommand(t *testing.T) {
	r := NewCommandRegistry(testCommands())
	ctx := context.Background()

	tests := []struct {
		input  string
		wantID int64
	}{
		{"ban", 1},
		{"unban", 1},
		{"REMIND", 2},
		{"remindme", 2},
		{"ping", 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := r.GetCommand(ctx, tt.input)
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.wantID, cmd.ID)
		})
	}

	cmd, err := r.GetCommand(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestCommandRegistry_ID(t *testing.T) {
	r := NewCommandRegistry(testCommands())

	id, ok := r.ID("ban")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	_, ok = r.ID("unban")
	assert.False(t, ok)

	assert.Len(t, r.List(), 3)
}
