package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/auth"
	"github.com/dmitrijs2005/vetintake/internal/config"
	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/dictation"
	"github.com/dmitrijs2005/vetintake/internal/extraction"
	"github.com/dmitrijs2005/vetintake/internal/filex"
	"github.com/dmitrijs2005/vetintake/internal/logging"
	"github.com/dmitrijs2005/vetintake/internal/models"
	"github.com/dmitrijs2005/vetintake/internal/ocr"
	"github.com/dmitrijs2005/vetintake/internal/repositories/repomanager"
	"github.com/dmitrijs2005/vetintake/internal/review"
	"github.com/dmitrijs2005/vetintake/internal/services"
	"github.com/dmitrijs2005/vetintake/internal/soap"
	"github.com/dmitrijs2005/vetintake/internal/speech"
	"github.com/dmitrijs2005/vetintake/internal/storage"
	"github.com/dmitrijs2005/vetintake/internal/vocabulary"
)

type intakeService interface {
	ProcessScan(ctx context.Context, clinicID string, u storage.ScanUpload) (*services.ScanResult, error)
	Scans(ctx context.Context, clinicID, petID string) ([]*models.Scan, error)
	PreviewURL(ctx context.Context, key string) (string, error)
}

type recordHistory interface {
	History(ctx context.Context, clinicID, petID string) ([]*models.VaccinationRecord, error)
	Catalog(ctx context.Context, clinicID string) ([]*models.Vaccine, error)
}

type consultPipeline interface {
	Transcribe(ctx context.Context, audio io.Reader, subject *soap.Subject) (*soap.Result, error)
}

type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	vocab     *vocabulary.Loader
	intake    intakeService
	records   recordHistory
	workflow  *review.Workflow
	dictation *dictation.Controller
	pipeline  consultPipeline
	threshold float64
	out       io.Writer

	operator  *auth.Operator
	clinicID  string
	petID     string
	audioPath string
	note      consultNote
	lastScans []*models.Scan
}

// NewApp opens the store, runs migrations and builds every engine named in c.
// Speech features stay disabled when no transcription key is configured.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if c.DatabaseDriver == "sqlite" && !strings.HasPrefix(c.DatabaseDSN, "file:") && c.DatabaseDSN != ":memory:" {
		if _, err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
			return nil, err
		}
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	norm := vocabulary.NewNormalizer(vocabulary.DefaultTable())
	vocab := vocabulary.NewLoader(c.VocabularyFile, norm, log)
	if _, err := vocab.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	rules, err := extraction.LoadRules(c.ExtractionRulesFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	scanStore, err := storage.NewS3ScanStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	engine, err := ocr.Engines.Create(c.OCRBackend, map[string]string{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := services.NewVaccinationStore(db, rm)
	a := &App{
		config:    c,
		log:       log,
		db:        db,
		vocab:     vocab,
		intake:    services.NewIntakeService(db, rm, scanStore, engine, c.OCRLanguage, extraction.NewExtractor(rules), log),
		records:   store,
		workflow:  review.NewWorkflow(store, log),
		threshold: rules.AttentionThreshold(),
		out:       os.Stdout,
	}

	var recognizer dictation.Recognizer
	if c.OpenAIKey != "" {
		tr, err := speech.Transcribers.Create(c.SpeechBackend, map[string]string{
			"api_key":  c.OpenAIKey,
			"base_url": c.OpenAIBaseURL,
			"model":    c.TranscriptionModel,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		recognizer = speech.NewBatchRecognizer(speech.FileSource{Path: a.pendingAudio}, tr)
		if c.LLMKey != "" {
			formatter := soap.NewLLMFormatter(c.LLMKey, c.LLMBaseURL, c.LLMModel)
			a.pipeline = soap.NewPipeline(tr, formatter, speech.LanguageFromLocale(c.SpeechLocale), log)
		}
	}
	a.dictation = dictation.NewController(recognizer, norm, c.SpeechLocale, log)
	log.Info(ctx, "engines ready", logging.KeyEngine, c.OCRBackend,
		"dictation", recognizer != nil, "consult_notes", a.pipeline != nil)

	if c.OperatorToken != "" {
		if err := a.authenticate(c.OperatorToken); err != nil {
			log.Warn(ctx, "configured operator token rejected", "error", err)
		}
	}

	return a, nil
}

func (a *App) pendingAudio() (string, error) {
	if a.audioPath == "" {
		return "", fmt.Errorf("no audio file given")
	}
	return a.audioPath, nil
}

func (a *App) isLoggedIn() bool {
	return a.operator != nil
}

func (a *App) getStatus() string {
	var parts []string
	if a.operator != nil {
		parts = append(parts, a.operator.UserID+"@"+a.clinicID)
	}
	if a.petID != "" {
		parts = append(parts, "pet:"+a.petID)
	}
	if s := a.workflow.State(); s != review.StateIdle {
		parts = append(parts, string(s))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Run blocks in the REPL until the operator exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		if err := a.vocab.WatchAndReload(done); err != nil {
			a.log.Warn(ctx, "vocabulary watcher stopped", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "vetintake: prontuário e vacinação (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	a.dictation.Abort()
	if a.db != nil {
		_ = a.db.Close()
	}
}
