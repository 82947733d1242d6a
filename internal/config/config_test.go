package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, EnginePlaywright, conf.BrowserConfig.Engine)
	assert.Equal(t, 1280, conf.BrowserConfig.ViewportWidth)
	assert.Equal(t, 720, conf.BrowserConfig.ViewportHeight)
	assert.Equal(t, 20.0, conf.MarkerConfig.MinArea)
	assert.Equal(t, 400, conf.MarkerConfig.ScrollStep)
	assert.Equal(t, 5*time.Second, conf.MarkerConfig.Wait)
}

func TestGetConfig_FromEnv(t *testing.T) {
	t.Setenv("BROWSER_ENGINE", "rod")
	t.Setenv("MARKER_COLOR_SEED", "42")
	t.Setenv("MARKER_WAIT", "250ms")

	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, EngineRod, conf.BrowserConfig.Engine)
	assert.Equal(t, int64(42), conf.MarkerConfig.ColorSeed)
	assert.Equal(t, 250*time.Millisecond, conf.MarkerConfig.Wait)
}

func TestGetConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"BROWSER_ENGINE":         "netscape",
		"BROWSER_VIEWPORT_WIDTH": "0",
		"MARKER_MIN_AREA":        "-1",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := GetConfig()
			assert.Error(t, err)
		})
	}
}
