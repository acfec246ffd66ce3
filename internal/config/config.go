// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is the full process configuration.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StorageDriver string
	DatabaseURL   string
	DBMaxConns    int32
	DBApplySchema bool

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	IdempotencyTTL     time.Duration

	Engine EngineConfig
}

// EngineConfig holds the consumption policy knobs.
type EngineConfig struct {
	// UnitTrackedCategories seeds Product.Policy when a product is created without one.
	UnitTrackedCategories []string

	// ColdTokens seeds Product.Serving.Temperature (name or category contains a token => cold).
	ColdTokens []string

	// ReusableWareProducts seeds Product.Serving.ReusableWare by product name.
	ReusableWareProducts []string

	// CupIngredients maps "HOT_S", "COLD_L", ... to the ingredient name holding that cup.
	CupIngredients map[string]string

	// OrderCancelRestock returns an order's ingredients to stock on cancellation.
	OrderCancelRestock bool

	// StaffDiscountRate is applied to list price for staff consumption (1 = free).
	StaffDiscountRate float64

	WasteExpenseCategory string
}

// Load reads .env (outside production) and the process environment.
func Load() (*Config, error) {
	if getEnv("APP_ENV", "development") != "production" {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("APP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBApplySchema:      getEnvBool("DB_APPLY_SCHEMA", false),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		Engine: EngineConfig{
			UnitTrackedCategories: getEnvList("UNIT_TRACKED_CATEGORIES", "Bakery,Snacks,Bottled Drinks"),
			ColdTokens:            getEnvList("COLD_TOKENS", "iced,cold,frappe,frozen"),
			ReusableWareProducts:  getEnvList("REUSABLE_WARE_PRODUCTS", "Turkish Coffee,Tea"),
			CupIngredients:        loadCupIngredients(),
			OrderCancelRestock:    getEnvBool("ORDER_CANCEL_RESTOCK", false),
			StaffDiscountRate:     getEnvFloat("STAFF_DISCOUNT_RATE", 1),
			WasteExpenseCategory:  getEnv("WASTE_EXPENSE_CATEGORY", "Waste"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=%s", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.Engine.StaffDiscountRate < 0 || c.Engine.StaffDiscountRate > 1 {
		return fmt.Errorf("STAFF_DISCOUNT_RATE must be within [0, 1], got %v", c.Engine.StaffDiscountRate)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

var cupTemperatures = []string{"HOT", "COLD"}
var cupSizes = []string{"S", "M", "L"}

var cupSizeNames = map[string]string{"S": "Small", "M": "Medium", "L": "Large"}

func loadCupIngredients() map[string]string {
	out := make(map[string]string, len(cupTemperatures)*len(cupSizes))
	for _, temp := range cupTemperatures {
		for _, size := range cupSizes {
			key := temp + "_" + size
			def := fmt.Sprintf("%s Cup %s", titleCase(temp), cupSizeNames[size])
			out[key] = getEnv("CUP_INGREDIENT_"+key, def)
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
