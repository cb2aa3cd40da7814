package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	LogLevel  string
	HTTPAddr  string
	DBPath    string
	OutputDir string

	MaxUploadMB        int
	CORSAllowedOrigins []string

	RunWindowSec      int
	PreviewSkipRunLen int

	ColCode    int
	ColName    int
	ColOption  int
	ColQty     int
	ColInvoice int
	ColTime    int
	ColLabel   int

	IncomingColCode int
	IncomingColQty  int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 32),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RunWindowSec:      getEnvInt("RUN_WINDOW_SEC", 2),
		PreviewSkipRunLen: getEnvInt("PREVIEW_SKIP_RUN_LEN", 10),

		// H, I, J, K, M, N, O of the order-management export.
		ColCode:    getEnvInt("COL_CODE", 8),
		ColName:    getEnvInt("COL_NAME", 9),
		ColOption:  getEnvInt("COL_OPTION", 10),
		ColQty:     getEnvInt("COL_QTY", 11),
		ColInvoice: getEnvInt("COL_INVOICE", 13),
		ColTime:    getEnvInt("COL_TIME", 14),
		ColLabel:   getEnvInt("COL_LABEL", 15),

		IncomingColCode: getEnvInt("INCOMING_COL_CODE", 1),
		IncomingColQty:  getEnvInt("INCOMING_COL_QTY", 2),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	cols := map[string]int{
		"COL_CODE":          c.ColCode,
		"COL_NAME":          c.ColName,
		"COL_OPTION":        c.ColOption,
		"COL_QTY":           c.ColQty,
		"COL_INVOICE":       c.ColInvoice,
		"COL_TIME":          c.ColTime,
		"COL_LABEL":         c.ColLabel,
		"INCOMING_COL_CODE": c.IncomingColCode,
		"INCOMING_COL_QTY":  c.IncomingColQty,
	}
	for name, col := range cols {
		if col < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, col)
		}
	}
	if c.RunWindowSec < 0 {
		return fmt.Errorf("RUN_WINDOW_SEC must be >= 0, got %d", c.RunWindowSec)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be > 0, got %d", c.MaxUploadMB)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
