package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded once at startup and passed
// down as a value. Nothing below main reads the environment.
type Config struct {
	Port   string
	DBPath string

	// VATPercent is the earnings withholding rate (default 6%).
	VATPercent float64
	// AdminFeePercent is the default admin fee rate (default 7%).
	AdminFeePercent float64
	// AdminFeeFixed is the fallback fixed fee in euros (default 25).
	AdminFeeFixed float64
}

// Load reads configuration from the environment, with a .env file picked up
// when present. Missing or malformed values fall back to defaults with a
// warning; a settlement run must not fail because config is unavailable.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env file")
	}

	return Config{
		Port:            envStr("PORT", "8080"),
		DBPath:          envStr("DB_PATH", "repasse.db"),
		VATPercent:      envFloat("VAT_PERCENT", 6),
		AdminFeePercent: envFloat("ADMIN_FEE_PERCENT", 7),
		AdminFeeFixed:   envFloat("ADMIN_FEE_FIXED", 25),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] WARNING: invalid %s=%q, using default %.2f", key, v, def)
		return def
	}
	return f
}
