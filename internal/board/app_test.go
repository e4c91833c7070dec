package board

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppLogsPhaseTransitions(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "data", "projects.json"), sampleFeed)
	writeTestFile(t, configPath(root), testConfig)

	core, logs := observer.New(zapcore.DebugLevel)
	app, err := NewApp(Options{Root: root, Logger: zap.New(core)})
	require.NoError(t, err)

	require.NoError(t, app.Controller.Start(context.Background()))
	app.Controller.SetSearch("alpha")

	var got [][2]string
	for _, e := range logs.FilterLoggerName("state").FilterMessage("phase").All() {
		fields := e.ContextMap()
		got = append(got, [2]string{fields["from"].(string), fields["to"].(string)})
	}
	assert.Equal(t, [][2]string{{"uninitialized", "loading"}, {"loading", "loaded"}}, got)
}

func TestAppTitleAndFind(t *testing.T) {
	app := newTestApp(t, sampleFeed, testConfig)
	assert.Equal(t, "acme/board projects", app.Title())

	_, ok := app.Find("P-2")
	assert.False(t, ok, "nothing is loaded yet")

	require.NoError(t, app.Controller.Start(context.Background()))
	p, ok := app.Find("P-2")
	require.True(t, ok)
	assert.Equal(t, "P-2", p.ID)

	app.Config.RepoName = ""
	assert.Equal(t, "Projects", app.Title())
}
