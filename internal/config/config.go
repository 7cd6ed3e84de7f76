// Package config loads questionctl settings from a YAML file, .env files and
// QUESTION_ environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. QUESTION_SERVER_ADDR.
const EnvPrefix = "QUESTION"

// Config holds CLI configuration.
type Config struct {
	Survey SurveyConfig `mapstructure:"survey"`
	Render RenderConfig `mapstructure:"render"`
	Server ServerConfig `mapstructure:"server"`
	Prompt PromptConfig `mapstructure:"prompt"`
	Log    LogConfig    `mapstructure:"log"`
}

// SurveyConfig locates survey and locale files.
type SurveyConfig struct {
	Dir     string `mapstructure:"dir"`
	Locales string `mapstructure:"locales"`
}

// RenderConfig holds HTML rendering settings.
type RenderConfig struct {
	Locale         string `mapstructure:"locale"`
	FallbackLocale string `mapstructure:"fallback_locale"`
	TemplatesDir   string `mapstructure:"templates_dir"`
	Portal         bool   `mapstructure:"portal"`

	// Theme is the path of a YAML theme manifest.
	Theme        string `mapstructure:"theme"`
	ThemeVariant string `mapstructure:"theme_variant"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	AssetPrefix   string        `mapstructure:"asset_prefix"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// PromptConfig holds terminal settings.
type PromptConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"`
	WordWrap      int    `mapstructure:"word_wrap"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads path when set, otherwise questionctl.yaml from the working
// directory if present. envFiles are loaded into the process environment
// first; missing .env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("survey.dir", "survey")
	v.SetDefault("survey.locales", "")
	v.SetDefault("render.locale", "en")
	v.SetDefault("render.fallback_locale", "en")
	v.SetDefault("render.templates_dir", "")
	v.SetDefault("render.portal", false)
	v.SetDefault("render.theme", "")
	v.SetDefault("render.theme_variant", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.asset_prefix", "/assets")
	v.SetDefault("server.shutdown_grace", "5s")
	v.SetDefault("prompt.markdown_style", "auto")
	v.SetDefault("prompt.word_wrap", 80)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("questionctl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return c, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}
