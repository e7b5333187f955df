package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvPathEnvVar     = "SCREEN_TRANSLATE_OVERLAY"
	DefaultConfigFile = "config.toml"

	CaptureModeAsync = "async"
	CaptureModeSync  = "sync"

	DetectorPipeline = "pipeline"
	DetectorCommand  = "command"
)

type LoadOptions struct {
	APIKeyPathOverride string
	ConfigPathOverride string
}

type Config struct {
	APIKey     string
	APIKeyPath string
	ConfigPath string
	Model      string
	Providers  []string
	LangFrom   string
	LangTo     string

	Detector            string
	DetectorCommand     string
	MinConfidence       float64
	HashDistance        int
	TranslateTimeoutSec int

	CaptureBackend  string
	CaptureCommand  string
	CaptureArgs     []string // nil means the tool's default flags
	CaptureDir      string
	CaptureInterval time.Duration
	CaptureMode     string

	FontSize       float64
	FontDecrement  float64
	MinFontSize    float64
	FontFile       string
	OcclusionColor string
	OcclusionAlpha uint8
	TextColor      string

	HotkeyToggle      string
	HotkeyPause       string
	EnableFileLogging bool
}

// File is the structured configuration file:
//
//	[api]
//	gemini = "..."
//	openrouter = "..."
//
//	[languages]
//	lang_from = "jpn"
//	lang_to = "English"
type File struct {
	API struct {
		Gemini     string `toml:"gemini"`
		OpenRouter string `toml:"openrouter"`
	} `toml:"api"`
	Languages struct {
		LangFrom string `toml:"lang_from"`
		LangTo   string `toml:"lang_to"`
	} `toml:"languages"`
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_TRANSLATE_OVERLAY env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	configPath := resolveConfigPath(opts)
	file, err := readFile(configPath)
	if err != nil {
		return nil, err
	}

	// Parse providers from comma-separated string
	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	interval := time.Duration(getEnvInt("CAPTURE_INTERVAL_MS", 1000)) * time.Millisecond
	if interval < time.Second {
		interval = time.Second
	}

	alpha := getEnvInt("OCCLUSION_ALPHA", 200)
	if alpha < 0 || alpha > 255 {
		alpha = 200
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		APIKey:     resolveAPIKey(apiKeyPath, file),
		APIKeyPath: apiKeyPath,
		ConfigPath: configPath,
		Model:      os.Getenv("MODEL"),
		Providers:  providers,
		LangFrom:   getEnvWithDefault("LANG_FROM", file.Languages.LangFrom),
		LangTo:     getEnvWithDefault("LANG_TO", firstNonEmpty(file.Languages.LangTo, "English")),

		Detector:            resolveDetector(os.Getenv("DETECTOR")),
		DetectorCommand:     os.Getenv("DETECTOR_COMMAND"),
		MinConfidence:       getEnvFloat("MIN_CONFIDENCE", 50),
		HashDistance:        getEnvInt("HASH_DISTANCE", 0),
		TranslateTimeoutSec: getEnvInt("TRANSLATE_TIMEOUT_SEC", 30),

		CaptureBackend:  getEnvWithDefault("CAPTURE_BACKEND", defaultCaptureBackend),
		CaptureCommand:  getEnvWithDefault("CAPTURE_COMMAND", "spectacle"),
		CaptureArgs:     getEnvFields("CAPTURE_ARGS"),
		CaptureDir:      getEnvWithDefault("CAPTURE_DIR", os.TempDir()),
		CaptureInterval: interval,
		CaptureMode:     resolveCaptureMode(os.Getenv("CAPTURE_MODE")),

		FontSize:       getEnvFloat("FONT_SIZE", 20),
		FontDecrement:  getEnvFloat("FONT_DECREMENT", 2),
		MinFontSize:    getEnvFloat("MIN_FONT_SIZE", 8),
		FontFile:       os.Getenv("FONT_FILE"),
		OcclusionColor: getEnvWithDefault("OCCLUSION_COLOR", "#000000"),
		OcclusionAlpha: uint8(alpha),
		TextColor:      getEnvWithDefault("TEXT_COLOR", "#ffffff"),

		HotkeyToggle:      getEnvWithDefault("HOTKEY_TOGGLE", "Ctrl+Alt+T"),
		HotkeyPause:       getEnvWithDefault("HOTKEY_PAUSE", "Ctrl+Alt+P"),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	return cfg, nil
}

// Validate reports settings the overlay cannot start without.
func (c *Config) Validate() error {
	if c.LangFrom == "" {
		return fmt.Errorf("source language is not set (LANG_FROM or [languages] lang_from)")
	}
	if c.Detector == DetectorCommand && c.DetectorCommand == "" {
		return fmt.Errorf("DETECTOR=command requires DETECTOR_COMMAND")
	}
	return nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

// resolveConfigPath picks the TOML file: explicit override, then CONFIG_FILE,
// then config.toml in the working directory, then next to the executable.
// An empty result means no file is used.
func resolveConfigPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.ConfigPathOverride); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("CONFIG_FILE")); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	if execPath, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(execPath), DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile parses the TOML file. A named file that is missing or malformed
// is an error; no file at all is not.
func readFile(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return f, nil
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string, file File) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		return v
	}
	return firstNonEmpty(file.API.OpenRouter, file.API.Gemini)
}

func resolveCaptureMode(value string) string {
	if strings.ToLower(strings.TrimSpace(value)) == CaptureModeSync {
		return CaptureModeSync
	}
	return CaptureModeAsync
}

func resolveDetector(value string) string {
	if strings.ToLower(strings.TrimSpace(value)) == DetectorCommand {
		return DetectorCommand
	}
	return DetectorPipeline
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFields splits a whitespace-separated list. Unset returns nil; a value
// of only spaces returns an empty, non-nil slice.
func getEnvFields(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	return append([]string{}, strings.Fields(value)...)
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
