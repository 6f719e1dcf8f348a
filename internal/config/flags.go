package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/vetintake/internal/flagx"
)

var knownFlags = []string{
	"-D", "-d", "-s", "-k", "-C",
	"-u", "-p", "-b", "-g", "-e", "-x",
	"-o", "-l", "-S", "-L",
	"-w", "-W", "-K", "-m",
	"-V", "-R", "-v", "-f",
}

// parseFlags overlays short command-line flags onto config.
//
//	-D string   database driver ("pgx" or "sqlite")
//	-d string   database DSN
//	-s string   token secret key
//	-k string   operator token
//	-C string   clinic id fallback
//	-u/-p       S3 user / password
//	-b/-g/-e    S3 bucket / region / endpoint
//	-x int      presigned URL validity, minutes
//	-o/-l       OCR backend / language
//	-S/-L       speech backend / locale
//	-w/-W       transcription API key / base URL
//	-K/-m       LLM API key / model
//	-V/-R       vocabulary / extraction rules YAML file
//	-v/-f       log level / log format
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("vetintake", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token secret key")
	fs.StringVar(&config.OperatorToken, "k", config.OperatorToken, "operator token")
	fs.StringVar(&config.ClinicID, "C", config.ClinicID, "clinic id")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	presign := fs.Int("x", int(config.PresignTTL.Minutes()), "presigned URL validity (in minutes)")

	fs.StringVar(&config.OCRBackend, "o", config.OCRBackend, "OCR backend")
	fs.StringVar(&config.OCRLanguage, "l", config.OCRLanguage, "OCR language")
	fs.StringVar(&config.SpeechBackend, "S", config.SpeechBackend, "speech backend")
	fs.StringVar(&config.SpeechLocale, "L", config.SpeechLocale, "dictation locale")

	fs.StringVar(&config.OpenAIKey, "w", config.OpenAIKey, "transcription API key")
	fs.StringVar(&config.OpenAIBaseURL, "W", config.OpenAIBaseURL, "transcription API base URL")
	fs.StringVar(&config.LLMKey, "K", config.LLMKey, "LLM API key")
	fs.StringVar(&config.LLMModel, "m", config.LLMModel, "LLM model")

	fs.StringVar(&config.VocabularyFile, "V", config.VocabularyFile, "vocabulary YAML file")
	fs.StringVar(&config.ExtractionRulesFile, "R", config.ExtractionRulesFile, "extraction rules YAML file")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json or text)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "x" {
			config.PresignTTL = time.Duration(*presign) * time.Minute
		}
	})
	return nil
}
