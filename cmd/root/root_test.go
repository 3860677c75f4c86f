package root_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/cmd/root"
)

func TestRootCommandMetadata(t *testing.T) {
	assert.Equal(t, "statement-import", root.Cmd.Use)
	assert.NotEmpty(t, root.Cmd.Short)
	assert.Contains(t, root.Cmd.Long, "duplicate")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRun)
}

func TestInitRegistersPersistentFlags(t *testing.T) {
	root.Init()

	for _, name := range []string{"input", "output", "bank"} {
		flag := root.Cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "missing persistent flag %q", name)
	}
}
