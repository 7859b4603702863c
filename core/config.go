package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries everything a single command invocation needs. It is loaded
// once in main and passed down by reference; nothing reads it ambiently.
type Config struct {
	AppName string `mapstructure:"appName"`
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`

	// code-hosting platform. The token may legitimately be empty here; the
	// CLI prompts for it before the first mutating command.
	GithubToken     string `mapstructure:"githubToken"`
	Organization    string `mapstructure:"organization" validate:"required"`
	StudentTeamSlug string `mapstructure:"studentTeamSlug"`
	ReaderTeamSlug  string `mapstructure:"readerTeamSlug"`

	// roster spreadsheet
	SpreadsheetID     string `mapstructure:"spreadsheetId"`
	GoogleCredentials string `mapstructure:"googleCredentials"`

	// homework workflow
	Deadline           string `mapstructure:"deadline"`
	FeedbackSourceRepo string `mapstructure:"feedbackSourceRepo"`

	// report delivery & error reporting
	SendgridAPIKey   string `mapstructure:"sendgridApiKey"`
	DefaultFromEmail string `mapstructure:"defaultFromEmail"`
	RollbarToken     string `mapstructure:"rollbarToken"`

	RequestTimeout time.Duration `mapstructure:"requestTimeout" validate:"min=1000000000"`
	MaxConcurrent  int           `mapstructure:"maxConcurrent" validate:"min=1,max=32"`
}

// LoadConfig reads defaults, an optional config/hand.yaml, an optional
// config/.env.<env> file and the environment, in increasing precedence.
func LoadConfig(workDir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "invisible-hand")
	v.SetDefault("env", "DEV")
	v.SetDefault("debug", false)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("requestTimeout", 30*time.Second)
	v.SetDefault("maxConcurrent", 5)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}

	v.SetConfigName("hand")
	v.AddConfigPath(filepath.Join(workDir, "config"))
	v.AddConfigPath(workDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	v.SetEnvPrefix("HAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	conf.Env = env
	return conf, nil
}

// Validate fails fast on a Config that would only blow up mid-run.
func (c *Config) Validate() error {
	if err := Validate.Struct(c); err != nil {
		return NewValidationError(errors.New("invalid configuration"), TranslateErrors(err)...)
	}
	return nil
}
