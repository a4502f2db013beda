package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oliver-kandagor/catalog-admin/pkg/intl"
	"github.com/oliver-kandagor/catalog-admin/pkg/logging"
)

const Production = "production"

// Resubmission policies for pending change requests.
const (
	ResubmissionOverwrite  = "overwrite"
	ResubmissionNewRequest = "new_request"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"catalog_admin"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type ModerationOptions struct {
	// ResubmissionPolicy decides what editing a still-pending change
	// request does: swap its payload in place, or void it and open a
	// fresh request.
	ResubmissionPolicy string `env:"MODERATION_RESUBMISSION_POLICY" envDefault:"overwrite"`
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	Moderation ModerationOptions

	// SupportedLocales is the closed set of locale codes payloads may
	// carry translations for.
	SupportedLocales []string `env:"SUPPORTED_LOCALES" envDefault:"en,ru" envSeparator:","`

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	Domain           string `env:"DOMAIN" envDefault:"localhost"`
	Origin           string `env:"ORIGIN" envDefault:"http://localhost:3200"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	// Looked up on every request; a random uuidv4 is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production {
		return "https"
	}
	return "http"
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.validateModeration(); err != nil {
		return err
	}
	if err := c.validateLocales(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}

func (c *Configuration) validateModeration() error {
	policy := strings.ToLower(strings.TrimSpace(c.Moderation.ResubmissionPolicy))
	if policy == "" {
		policy = ResubmissionOverwrite
	}
	switch policy {
	case ResubmissionOverwrite, ResubmissionNewRequest:
	default:
		return fmt.Errorf(
			"invalid MODERATION_RESUBMISSION_POLICY=%q (expected overwrite|new_request)",
			c.Moderation.ResubmissionPolicy,
		)
	}
	c.Moderation.ResubmissionPolicy = policy
	return nil
}

func (c *Configuration) validateLocales() error {
	known := make(map[string]bool)
	for _, lang := range intl.GetSupportedLanguages(nil) {
		known[lang.Code] = true
	}
	cleaned := make([]string, 0, len(c.SupportedLocales))
	for _, code := range c.SupportedLocales {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if !known[code] {
			return fmt.Errorf("unknown locale %q in SUPPORTED_LOCALES", code)
		}
		cleaned = append(cleaned, code)
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("SUPPORTED_LOCALES must name at least one locale")
	}
	c.SupportedLocales = cleaned
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
