package block

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/flowstate/adapter/cli/clitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_PlansBlock(t *testing.T) {
	app, _ := clitest.NewApp(t)

	out, err := clitest.Run(t, addCmd, []string{"Deep work tomorrow at 9:30 for 90min"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Planned: Deep work")
	assert.Contains(t, out, "When: Wed, Mar 5 09:30 - 11:00")

	assert.Equal(t, 1, app.Reader.TimeBlockCount(context.Background()))
}

func TestAddCmd_DefaultsToNowForAnHour(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, addCmd, []string{"Inbox", "zero"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Planned: Inbox zero")
	assert.Contains(t, out, "When: Tue, Mar 4 10:00 - 11:00")
}

func TestAddCmd_RejectsEmptyTitle(t *testing.T) {
	app, _ := clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, []string{"30min"}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, app.Reader.TimeBlockCount(context.Background()))
}
