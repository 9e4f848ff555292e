package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	examplePath = "../../configs/nebula.json"
	schemaPath  = "../../configs/nebula.schema.json"
)

// recorder stands in for the hosts and keeps what they were given.
type recorder struct {
	engine     *nebula.Engine
	fullscreen bool
	window     int
	term       int
	ctx        context.Context
	err        error
}

func (r *recorder) runners() Runners {
	return Runners{
		Window: func(e *nebula.Engine, _ *zap.Logger, fullscreen bool) error {
			r.window++
			r.engine, r.fullscreen = e, fullscreen
			return r.err
		},
		Terminal: func(ctx context.Context, e *nebula.Engine, _ *zap.Logger) error {
			r.term++
			r.engine, r.ctx = e, ctx
			return r.err
		},
	}
}

func execute(r *recorder, args ...string) (string, error) {
	cmd := NewRootCmd(r.runners())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_DefaultsToWindow(t *testing.T) {
	var r recorder
	out, err := execute(&r, "--seed", "5")
	require.NoError(t, err)
	assert.Equal(t, 1, r.window)
	assert.Zero(t, r.term)
	require.NotNil(t, r.engine)
	assert.Equal(t, int64(5), r.engine.Seed())
	assert.False(t, r.fullscreen)
	assert.Contains(t, out, "nebula engine ready")
	assert.Contains(t, out, "starting window host")
}

func TestWindow_FullscreenAndJSONLogs(t *testing.T) {
	var r recorder
	out, err := execute(&r, "window", "--fullscreen", "--log-format", "json")
	require.NoError(t, err)
	assert.Equal(t, 1, r.window)
	assert.True(t, r.fullscreen)
	assert.Contains(t, out, `"msg":"starting window host"`)
}

func TestWindow_RunnerErrorIsReturned(t *testing.T) {
	r := recorder{err: errors.New("no display")}
	_, err := execute(&r, "window")
	assert.ErrorIs(t, err, r.err)
}

func TestTerm_KeepsStdoutClean(t *testing.T) {
	var r recorder
	out, err := execute(&r, "term", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, 1, r.term)
	assert.NotNil(t, r.ctx)
	assert.Equal(t, int64(3), r.engine.Seed())
	assert.Empty(t, out, "the terminal is left to the renderer")
}

func TestTerm_LogsToFile(t *testing.T) {
	var r recorder
	file := filepath.Join(t.TempDir(), "nebula.log")
	out, err := execute(&r, "term", "--log-file", file)
	require.NoError(t, err)
	assert.Empty(t, out)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"starting terminal host"`)
}

func TestRoot_EnvironmentOverrides(t *testing.T) {
	t.Setenv("NEBULA_SEED", "9")
	t.Setenv("NEBULA_LOG_LEVEL", "warn")
	var r recorder
	out, err := execute(&r)
	require.NoError(t, err)
	assert.Equal(t, int64(9), r.engine.Seed())
	assert.NotContains(t, out, "starting window host", "info is below the level set in the environment")

	// flags win over the environment
	out, err = execute(&r, "--seed", "11", "--log-level", "info")
	require.NoError(t, err)
	assert.Equal(t, int64(11), r.engine.Seed())
	assert.Contains(t, out, "starting window host")
}

func TestConfig_PrintsEffectiveValues(t *testing.T) {
	var r recorder
	out, err := execute(&r, "config", "--config", examplePath, "--schema", schemaPath)
	require.NoError(t, err)
	var got nebula.Config
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	if diff := cmp.Diff(nebula.DefaultConfig(), &got); diff != "" {
		t.Errorf("effective config differs from defaults (-want +got):\n%s", diff)
	}

	out, err = execute(&r, "config", "--seed", "21", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "maxSpeed: 6\n")
	assert.Contains(t, out, "seed: 21\n")
	assert.Zero(t, r.window, "config never starts a host")
}

func TestRoot_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing config", []string{"--config", "missing.json", "--schema", schemaPath}, "failed to open config file"},
		{"missing schema", []string{"--config", examplePath, "--schema", "missing.schema.json"}, "failed to compile schema"},
		{"bad log level", []string{"--log-level", "loud"}, "invalid log level"},
		{"bad output format", []string{"config", "--format", "toml"}, "unknown format"},
		{"unknown flag", []string{"--speed", "3"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r recorder
			_, err := execute(&r, tt.args...)
			assert.ErrorContains(t, err, tt.want)
			assert.Zero(t, r.window)
		})
	}
}

func TestRoot_Version(t *testing.T) {
	var r recorder
	out, err := execute(&r, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
	assert.Zero(t, r.window)
}
