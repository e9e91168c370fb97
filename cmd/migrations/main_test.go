package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_Commands(t *testing.T) {
	t.Parallel()

	app := newApp()
	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"init", "migrate", "mark_applied", "rollback", "create", "unlock", "status"}, names)

	rollback := app.Command("rollback")
	require.NotNil(t, rollback)
	require.Len(t, rollback.Flags, 1)
	assert.Equal(t, "steps", rollback.Flags[0].Names()[0])
}

func TestNewApp_HelpWithoutDatabase(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"migrations"}, {"migrations", "help"}} {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out

		err := app.Run(args)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "mark_applied")
		assert.Contains(t, out.String(), "rollback")
	}
}
