package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`

	MongoURI    string `yaml:"mongo_uri"`
	MongoDBName string `yaml:"mongo_db_name"`

	ScriptModel    string `yaml:"script_model"`
	ImageModel     string `yaml:"image_model"`
	DefaultVoiceID string `yaml:"default_voice_id"`
	ImageCount     int    `yaml:"image_count"`

	Storage         StorageConfig         `yaml:"storage"`
	GenerationQuota GenerationQuotaConfig `yaml:"generation_quota"`

	// Secrets are never read from config.yaml; they come from the process
	// environment (.env in development, injected in deployment).
	GeminiApiKey       string `yaml:"-"`
	ElevenLabsApiKey   string `yaml:"-"`
	SupabaseURL        string `yaml:"-"`
	SupabaseServiceKey string `yaml:"-"`
	KafkaBrokers       string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig names the media bucket and the folders audio and image
// objects are keyed under.
type StorageConfig struct {
	Bucket      string `yaml:"bucket"`
	AudioFolder string `yaml:"audio_folder"`
	ImageFolder string `yaml:"image_folder"`
}

// GenerationQuotaConfig defines rate/daily limits for LLM-backed generation
// runs. Values <= 0 mean no limit in that direction.
type GenerationQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}

	if v := os.Getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	c.GeminiApiKey = os.Getenv("GEMINI_API_KEY")
	c.ElevenLabsApiKey = os.Getenv("ELEVENLABS_API_KEY")
	c.SupabaseURL = os.Getenv("SUPABASE_URL")
	c.SupabaseServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	c.KafkaBrokers = os.Getenv("KAFKA_BOOTSTRAP_SERVERS")

	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
