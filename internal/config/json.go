package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vetintake/internal/flagx"
	"github.com/dmitrijs2005/vetintake/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	DatabaseDriver      string         `json:"database_driver"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	OperatorToken       string         `json:"operator_token"`
	ClinicID            string         `json:"clinic_id"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	PresignTTL          timex.Duration `json:"presign_ttl"`
	OCRBackend          string         `json:"ocr_backend"`
	OCRLanguage         string         `json:"ocr_language"`
	SpeechBackend       string         `json:"speech_backend"`
	SpeechLocale        string         `json:"speech_locale"`
	OpenAIKey           string         `json:"openai_api_key"`
	OpenAIBaseURL       string         `json:"openai_base_url"`
	TranscriptionModel  string         `json:"transcription_model"`
	LLMKey              string         `json:"llm_api_key"`
	LLMBaseURL          string         `json:"llm_base_url"`
	LLMModel            string         `json:"llm_model"`
	VocabularyFile      string         `json:"vocabulary_file"`
	ExtractionRulesFile string         `json:"extraction_rules_file"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays the values of the file named by -c/-config onto config.
// Keys missing from the file leave the current value untouched.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&config.DatabaseDriver, c.DatabaseDriver)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.OperatorToken, c.OperatorToken)
	overlay(&config.ClinicID, c.ClinicID)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignTTL.Duration > 0 {
		config.PresignTTL = c.PresignTTL.Duration
	}
	overlay(&config.OCRBackend, c.OCRBackend)
	overlay(&config.OCRLanguage, c.OCRLanguage)
	overlay(&config.SpeechBackend, c.SpeechBackend)
	overlay(&config.SpeechLocale, c.SpeechLocale)
	overlay(&config.OpenAIKey, c.OpenAIKey)
	overlay(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	overlay(&config.TranscriptionModel, c.TranscriptionModel)
	overlay(&config.LLMKey, c.LLMKey)
	overlay(&config.LLMBaseURL, c.LLMBaseURL)
	overlay(&config.LLMModel, c.LLMModel)
	overlay(&config.VocabularyFile, c.VocabularyFile)
	overlay(&config.ExtractionRulesFile, c.ExtractionRulesFile)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)

	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
