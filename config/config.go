// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig is the immutable application configuration. It is built once
// in main and passed by reference into every component constructor.
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	Collect   CollectConfig   `mapstructure:"collect"`
	Recording RecordingConfig `mapstructure:"recording"`
	Session   SessionConfig   `mapstructure:"session"`
	Study     StudyConfig     `mapstructure:"study"`
}

// CollectConfig covers the upload pipeline and the proxy hop to the
// remote collection service.
type CollectConfig struct {
	// Endpoint the client-side pipeline posts to, usually this service's
	// own /api/proxy route.
	Endpoint string `mapstructure:"endpoint" validate:"required"`
	// TargetAPI is the remote collection service the proxy forwards to.
	TargetAPI string `mapstructure:"target_api" validate:"required,url"`
	AuthToken string `mapstructure:"auth_token"`

	TimeoutMs        int `mapstructure:"timeout_ms" validate:"gt=0"`
	ForwardTimeoutMs int `mapstructure:"forward_timeout_ms" validate:"gt=0"`
	RetryAttempts    int `mapstructure:"retry_attempts" validate:"gt=0"`
	RetryDelayMs     int `mapstructure:"retry_delay_ms" validate:"gte=0"`

	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type RecordingConfig struct {
	MinDuration float64 `mapstructure:"min_duration" validate:"gt=0"`
	MaxDuration float64 `mapstructure:"max_duration" validate:"gt=0"`
	MimeType    string  `mapstructure:"mime_type" validate:"required"`
	SampleRate  int     `mapstructure:"sample_rate" validate:"gt=0"`
	BitRate     string  `mapstructure:"bit_rate" validate:"required"`
	FFmpegPath  string  `mapstructure:"ffmpeg_path" validate:"required"`
	// InboxDir is where the station capturer picks up freshly recorded
	// wav takes from the recording rig.
	InboxDir string `mapstructure:"inbox_dir" validate:"required"`
}

type SessionConfig struct {
	StoragePrefix string `mapstructure:"storage_prefix" validate:"required"`
	StoragePath   string `mapstructure:"storage_path" validate:"required"`
	UploadsDir    string `mapstructure:"uploads_dir" validate:"required"`
	SnapshotTTLHr int    `mapstructure:"snapshot_ttl_hr" validate:"gt=0"`
	// RedisAddr switches the snapshot store to Redis when set.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
}

type StudyConfig struct {
	ProjectID            string `mapstructure:"project_id" validate:"required"`
	PhrasesFile          string `mapstructure:"phrases_file"`
	AllowSkip            bool   `mapstructure:"allow_skip"`
	EnablePracticeMode   bool   `mapstructure:"enable_practice_mode"`
	BreakAfterRecordings int    `mapstructure:"break_after_recordings" validate:"gte=0"`
	MilestoneRecordings  int    `mapstructure:"milestone_recordings" validate:"gte=0"`
}

// InitConfig reads configuration from an env file and the environment.
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env variables.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "voicebank-collector")
	v.SetDefault("VERSION", "1.0.0")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 3000)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("COLLECT__ENDPOINT", "/api/proxy")
	v.SetDefault("COLLECT__TARGET_API", "http://159.65.185.102/collect")
	v.SetDefault("COLLECT__AUTH_TOKEN", "")
	v.SetDefault("COLLECT__TIMEOUT_MS", 30000)
	v.SetDefault("COLLECT__FORWARD_TIMEOUT_MS", 10000)
	v.SetDefault("COLLECT__RETRY_ATTEMPTS", 3)
	v.SetDefault("COLLECT__RETRY_DELAY_MS", 2000)
	v.SetDefault("COLLECT__MAX_UPLOAD_BYTES", 10*1024*1024)

	v.SetDefault("RECORDING__MIN_DURATION", 0.5)
	v.SetDefault("RECORDING__MAX_DURATION", 15.0)
	v.SetDefault("RECORDING__MIME_TYPE", "audio/wav")
	v.SetDefault("RECORDING__SAMPLE_RATE", 16000)
	v.SetDefault("RECORDING__BIT_RATE", "128k")
	v.SetDefault("RECORDING__FFMPEG_PATH", "ffmpeg")
	v.SetDefault("RECORDING__INBOX_DIR", "./inbox")

	v.SetDefault("SESSION__STORAGE_PREFIX", "voice_research_")
	v.SetDefault("SESSION__STORAGE_PATH", "./data")
	v.SetDefault("SESSION__UPLOADS_DIR", "./uploads")
	v.SetDefault("SESSION__SNAPSHOT_TTL_HR", 24)
	v.SetDefault("SESSION__REDIS_ADDR", "")
	v.SetDefault("SESSION__REDIS_PASSWORD", "")

	v.SetDefault("STUDY__PROJECT_ID", "voice_research_2024")
	v.SetDefault("STUDY__PHRASES_FILE", "")
	v.SetDefault("STUDY__ALLOW_SKIP", true)
	v.SetDefault("STUDY__ENABLE_PRACTICE_MODE", true)
	v.SetDefault("STUDY__BREAK_AFTER_RECORDINGS", 10)
	v.SetDefault("STUDY__MILESTONE_RECORDINGS", 3)
}

// GetApplicationConfig unmarshals and validates the application config.
// A recording window where max < min refuses to start rather than leaving
// recording behavior undefined.
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	if config.Recording.MaxDuration < config.Recording.MinDuration {
		return nil, fmt.Errorf(
			"recording max_duration (%.2fs) must not be below min_duration (%.2fs)",
			config.Recording.MaxDuration, config.Recording.MinDuration)
	}
	return &config, nil
}

func (c *CollectConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c *CollectConfig) ForwardTimeout() time.Duration {
	return time.Duration(c.ForwardTimeoutMs) * time.Millisecond
}

func (c *CollectConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *SessionConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLHr) * time.Hour
}
