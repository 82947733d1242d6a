package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnginePlaywright = "playwright"
	EngineRod        = "rod"
)

type Config struct {
	AppConfig     *AppConfig
	BrowserConfig *BrowserConfig
	MarkerConfig  *MarkerConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type BrowserConfig struct {
	Engine         string `envconfig:"BROWSER_ENGINE" default:"playwright"`
	Headless       bool   `envconfig:"BROWSER_HEADLESS" default:"false"`
	SlowMo         int    `envconfig:"BROWSER_SLOW_MO" default:"100"`
	Timeout        int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir    string `envconfig:"BROWSER_USER_DATA_DIR" default:"./browser-data"`
	ViewportWidth  int    `envconfig:"BROWSER_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int    `envconfig:"BROWSER_VIEWPORT_HEIGHT" default:"720"`
	StartURL       string `envconfig:"BROWSER_START_URL" default:"https://www.google.com"`
}

type MarkerConfig struct {
	// ColorSeed of 0 seeds overlay colors from the clock.
	ColorSeed     int64         `envconfig:"MARKER_COLOR_SEED" default:"0"`
	MinArea       float64       `envconfig:"MARKER_MIN_AREA" default:"20"`
	ScreenshotDir string        `envconfig:"MARKER_SCREENSHOT_DIR" default:"./screenshots"`
	ScrollStep    int           `envconfig:"MARKER_SCROLL_STEP" default:"400"`
	Wait          time.Duration `envconfig:"MARKER_WAIT" default:"5s"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &conf, nil
}

func (c *Config) validate() error {
	switch c.BrowserConfig.Engine {
	case EnginePlaywright, EngineRod:
	default:
		return fmt.Errorf("unknown BROWSER_ENGINE %q", c.BrowserConfig.Engine)
	}

	if c.BrowserConfig.ViewportWidth <= 0 || c.BrowserConfig.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d",
			c.BrowserConfig.ViewportWidth, c.BrowserConfig.ViewportHeight)
	}

	if c.MarkerConfig.MinArea < 0 {
		return fmt.Errorf("MARKER_MIN_AREA must not be negative")
	}

	return nil
}
