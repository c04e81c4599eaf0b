package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration
type Config struct {
	// Browser configuration
	Headless       bool
	NoSandbox      bool
	BrowserBin     string
	BrowserProxy   string
	UserAgent      string `validate:"required"`
	ViewportWidth  int    `validate:"gte=320"`
	ViewportHeight int    `validate:"gte=240"`

	// Timeouts
	NavigationTimeout time.Duration `validate:"gt=0"`
	WaitTimeout       time.Duration `validate:"gt=0"`
	TerminalTimeout   time.Duration `validate:"gt=0"`
	BulkTimeout       time.Duration `validate:"gtefield=TerminalTimeout"`

	// Retry policy used by the worker
	MaxRetries int           `validate:"gte=0,lte=10"`
	RetryDelay time.Duration `validate:"gte=0"`

	// Worker pool size for batch lookups
	WorkerPoolSize int `validate:"gte=1,lte=32"`

	// Evasion policy
	EvasionEnabled bool
	JitterMin      time.Duration `validate:"gte=0"`
	JitterMax      time.Duration `validate:"gtefield=JitterMin"`

	// Bulk / pagination
	BulkDelay    time.Duration `validate:"gte=0"`
	PageCap      int           `validate:"gte=1,lte=200"`
	XMLRetention time.Duration `validate:"gt=0"`

	// Diagnostics
	DiagnosticsDir string

	// Redis configuration (empty address disables publishing)
	RedisAddr            string
	RedisDB              int `validate:"gte=0"`
	RedisStream          string
	RedisStreamMaxLength int `validate:"gte=0"`

	// Memcache configuration (empty address disables cooldown)
	MemcacheAddr string
	Cooldown     time.Duration `validate:"gte=0"`

	// URLs for different terminals
	LCITURL      string `validate:"required,url"`
	ESCOURL      string `validate:"required,url"`
	LCB1URL      string `validate:"required,url"`
	TIPSURL      string `validate:"required,url"`
	KerryURL     string `validate:"required,url"`
	HutchisonURL string `validate:"required,url"`
	PATURL       string `validate:"required,url"`
	JWDURL       string `validate:"required,url"`
	SCTURL       string `validate:"required,url"`
	UnithaiURL   string `validate:"required,url"`

	// Environment
	Environment string `validate:"oneof=development staging production test"`
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		Headless:       getBool("BROWSER_HEADLESS", true),
		NoSandbox:      getBool("BROWSER_NO_SANDBOX", true),
		BrowserBin:     getEnv("BROWSER_BIN", ""),
		BrowserProxy:   getEnv("BROWSER_PROXY", ""),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		ViewportWidth:  getInt("VIEWPORT_WIDTH", 1366),
		ViewportHeight: getInt("VIEWPORT_HEIGHT", 900),

		NavigationTimeout: getMillis("NAVIGATION_TIMEOUT_MS", 30000),
		WaitTimeout:       getMillis("WAIT_TIMEOUT_MS", 15000),
		TerminalTimeout:   time.Duration(getInt("TERMINAL_TIMEOUT_SECONDS", 180)) * time.Second,
		BulkTimeout:       time.Duration(getInt("BULK_TIMEOUT_SECONDS", 900)) * time.Second,

		MaxRetries: getInt("MAX_RETRIES", 1),
		RetryDelay: getMillis("RETRY_DELAY_MS", 2000),

		WorkerPoolSize: getInt("WORKER_POOL_SIZE", 3),

		EvasionEnabled: getBool("EVASION_ENABLED", true),
		JitterMin:      getMillis("JITTER_MIN_MS", 50),
		JitterMax:      getMillis("JITTER_MAX_MS", 3000),

		BulkDelay:    getMillis("BULK_DELAY_MS", 1500),
		PageCap:      getInt("PAGE_CAP", 20),
		XMLRetention: time.Duration(getInt("XML_RETENTION_DAYS", 90)) * 24 * time.Hour,

		DiagnosticsDir: getEnv("DIAGNOSTICS_DIR", "diagnostics"),

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "vessel_schedules"),
		RedisStreamMaxLength: getInt("REDIS_STREAM_MAX_LENGTH", 5000),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		Cooldown:     time.Duration(getInt("COOLDOWN_SECONDS", 300)) * time.Second,

		LCITURL:      getEnv("LCIT_URL", "https://www.lcit.com/vessel-schedule"),
		ESCOURL:      getEnv("ESCO_URL", "https://apex.esco.co.th/ords/f?p=101:1"),
		LCB1URL:      getEnv("LCB1_URL", "https://www.lcb1.com/berth-schedule"),
		TIPSURL:      getEnv("TIPS_URL", "https://www.tips.co.th/api/vessel-schedule"),
		KerryURL:     getEnv("KERRY_URL", "https://www.kerrysiamseaport.com/vessel"),
		HutchisonURL: getEnv("HUTCHISON_URL", "https://www.hutchisonports.co.th/vessel-schedule"),
		PATURL:       getEnv("PAT_URL", "https://www.port.co.th/bkp/vessel-schedule"),
		JWDURL:       getEnv("JWD_URL", "https://www.jwd-terminal.com/schedule"),
		SCTURL:       getEnv("SCT_URL", "https://www.sahathai.com/vessel-schedule"),
		UnithaiURL:   getEnv("UNITHAI_URL", "https://www.unithai.com/terminal/berth-schedule"),

		Environment: getEnv("VESSEL_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Millisecond
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
