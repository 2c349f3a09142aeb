package habit

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli/clitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_AddsHabit(t *testing.T) {
	app, _ := clitest.NewApp(t)

	out, err := clitest.Run(t, addCmd, []string{"Morning", "stretch"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Added habit: Morning stretch")

	habits := app.Reader.Habits(context.Background())
	require.Len(t, habits, 1)
	assert.Equal(t, "Morning stretch", habits[0].Name)
	assert.True(t, habits[0].IsActive)
	assert.Empty(t, habits[0].CompletedSlots)
}

func TestAddCmd_RejectsBlankName(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, []string{"  "}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name cannot be empty")
}

func TestCompleteCmd_ByName(t *testing.T) {
	app, _ := clitest.NewApp(t)
	_, err := clitest.Run(t, addCmd, []string{"Read"}, nil)
	require.NoError(t, err)

	out, err := clitest.Run(t, completeCmd, []string{"read"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Nice! Read done (1 today).")

	out, err = clitest.Run(t, completeCmd, []string{"Read"}, map[string]string{"slot": "evening"})
	require.NoError(t, err)
	assert.Contains(t, out, "(2 today)")

	habits := app.Reader.Habits(context.Background())
	require.Len(t, habits, 1)
	require.Len(t, habits[0].CompletedSlots, 2)
	assert.Equal(t, "2025-03-04", habits[0].CompletedSlots[0].Date)
	assert.Equal(t, "evening", habits[0].CompletedSlots[1].SlotID)
}

func TestCompleteCmd_ByID(t *testing.T) {
	app, _ := clitest.NewApp(t)
	habit, err := app.Recorder.AddHabit(context.Background(), "Walk")
	require.NoError(t, err)

	out, err := clitest.Run(t, completeCmd, []string{habit.ID.String()}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Walk done")
}

func TestCompleteCmd_UnknownHabit(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, completeCmd, []string{"Juggle"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no habit matches "Juggle"`)
}

func TestListCmd_ShowsTodayStatus(t *testing.T) {
	app, clk := clitest.NewApp(t)
	ctx := context.Background()

	_, err := app.Recorder.AddHabit(ctx, "Meditate")
	require.NoError(t, err)
	_, err = app.Recorder.AddHabit(ctx, "Journal")
	require.NoError(t, err)
	_, err = app.Recorder.CompleteHabit(ctx, "Meditate", "")
	require.NoError(t, err)

	out, err := clitest.Run(t, listCmd, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Meditate")
	assert.Contains(t, out, "[ ] Journal")
	assert.Contains(t, out, "Today: 1 | Total: 1")

	// Yesterday's completion no longer counts for today
	clk.Advance(24 * time.Hour)
	out, err = clitest.Run(t, listCmd, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] Meditate")
	assert.Contains(t, out, "Today: 0 | Total: 1")
}

func TestListCmd_Empty(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, listCmd, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No habits yet.")
}
