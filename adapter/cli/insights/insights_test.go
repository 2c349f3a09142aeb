package insights

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/felixgeelhaar/flowstate/adapter/cli/clitest"
	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsCmd_NoService(t *testing.T) {
	cli.SetApp(nil)

	_, err := clitest.Run(t, Cmd, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insights service not available")
}

func TestInsightsCmd_Placeholder(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, Cmd, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, insightsApp.PlaceholderMessage)
	assert.Contains(t, out, "(0 check-ins, 0 habits so far)")
}

func TestInsightsCmd_FirstHabit(t *testing.T) {
	app, _ := clitest.NewApp(t)
	ctx := context.Background()

	_, err := app.Recorder.AddHabit(ctx, "Meditate")
	require.NoError(t, err)
	_, err = app.Recorder.CompleteHabit(ctx, "Meditate", "")
	require.NoError(t, err)

	out, err := clitest.Run(t, Cmd, nil, map[string]string{"charts": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "[achievement] Your first habit is underway (100%)")
	assert.Contains(t, out, "You're building momentum with Meditate.")
	assert.Contains(t, out, "Last 7 days:")
	assert.Contains(t, out, "  Tue       1")

	latest, ok := app.Insights.Latest()
	require.True(t, ok)
	assert.False(t, latest.Placeholder)
}

func TestInsightsCmd_JSON(t *testing.T) {
	app, _ := clitest.NewApp(t)
	_, err := app.Recorder.AddHabit(context.Background(), "Walk")
	require.NoError(t, err)

	out, err := clitest.Run(t, Cmd, nil, map[string]string{"json": "true"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "insights")
	assert.Contains(t, decoded, "chartData")
	assert.Equal(t, true, decoded["placeholder"])
	assert.Equal(t, float64(1), decoded["habits"])

	charts, ok := decoded["chartData"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, charts["weeklyPattern"], 7)
	assert.Len(t, charts["trend"], 7)
}
