package config

import (
	"errors"
	"time"
)

// Config is the application configuration root.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	AI       AIConfig        `mapstructure:"ai"`
	Log      LogConfig       `mapstructure:"log"`
	Mongo    MongoConfig     `mapstructure:"mongo"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Storage  StorageConfig   `mapstructure:"storage"`
	TTS      TTSConfig       `mapstructure:"tts"`
	VideoGen VideoGenConfig  `mapstructure:"videogen"`
	Editor   EditorConfig    `mapstructure:"editor"`
	Assets   AssetPoolConfig `mapstructure:"assets"`
	Notify   NotifyConfig    `mapstructure:"notify"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig configures the provider-selection classifier model.
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai, azure, ark, ark-sdk
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig holds classifier model parameters.
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig configures MongoDB.
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig configures the selection cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	SelectionTTL time.Duration `mapstructure:"selection_ttl"`
}

// AuthConfig configures operator authentication. This is an internal
// single-tenant dashboard, so credentials live in config rather than a
// user collection.
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
	OperatorUser      string        `mapstructure:"operator_user"`
	OperatorHash      string        `mapstructure:"operator_hash"` // bcrypt hash of the operator password
}

// StorageConfig configures the blob store used for synthesized audio.
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig configures filesystem-backed storage.
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`
	BaseURL       string `mapstructure:"base_url"`
	PresignExpiry int    `mapstructure:"presign_expiry"` // seconds
}

// OSSConfig configures Aliyun OSS storage.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"`
}

// TTSConfig configures the speech-synthesis fallback chain.
type TTSConfig struct {
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Volcano    VolcanoConfig    `mapstructure:"volcano"`
}

// ElevenLabsConfig configures the primary (paid) TTS backend.
type ElevenLabsConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	VoiceID        string `mapstructure:"voice_id"`
	MaxChars       int    `mapstructure:"max_chars"`
	CharsPerSecond int    `mapstructure:"chars_per_second"`
}

// VolcanoConfig configures the openspeech TTS backend.
type VolcanoConfig struct {
	APIURL      string `mapstructure:"api_url"`
	AccessToken string `mapstructure:"access_token"`
	AppID       string `mapstructure:"app_id"`
	Cluster     string `mapstructure:"cluster"`
	VoiceType   string `mapstructure:"voice_type"`
	SampleRate  int    `mapstructure:"sample_rate"`
	MaxChars    int    `mapstructure:"max_chars"`
}

// VideoGenConfig configures the remote render gateway.
type VideoGenConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`
}

// EditorConfig configures the timeline-compositing render service.
type EditorConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`
}

// AssetPoolConfig configures the remote avatar asset pool.
type AssetPoolConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// NotifyConfig configures the fire-and-forget "video ready" webhook.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Validate checks config sanity.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return nil
}
