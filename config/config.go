package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string

	// Canonical timezone for all attendance math. Never server-local time.
	Timezone string

	// Session windows, HH:MM in the canonical timezone.
	MorningOpen            string
	MorningLateAfter       string
	MorningTimeoutEarliest string
	MorningClose           string

	AfternoonOpen            string
	AfternoonLateAfter       string
	AfternoonTimeoutEarliest string
	AfternoonClose           string

	// Fallback amount when penalty_rules has no row for a condition.
	PenaltyDefaultAmount decimal.Decimal

	// Cron specs, evaluated in the canonical timezone.
	CronMorningSweep   string
	CronAfternoonSweep string
	CronDailyArchive   string
	JobTimeout         time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getDecimal(k, def string) decimal.Decimal {
	v := get(k, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Printf("[config] invalid decimal %s=%q, using %s", k, v, def)
		d, _ = decimal.NewFromString(def)
	}
	return d
}

func Load() *Config {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", "postgres"),
		DBName:     get("DB_NAME", "smartattendance"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		JWTSecret: get("JWT_SECRET", "dev-secret"),

		Timezone: get("ATTENDANCE_TZ", "Asia/Manila"),

		MorningOpen:            get("MORNING_OPEN", "06:00"),
		MorningLateAfter:       get("MORNING_LATE_AFTER", "07:00"),
		MorningTimeoutEarliest: get("MORNING_TIMEOUT_EARLIEST", "11:30"),
		MorningClose:           get("MORNING_CLOSE", "12:00"),

		AfternoonOpen:            get("AFTERNOON_OPEN", "12:30"),
		AfternoonLateAfter:       get("AFTERNOON_LATE_AFTER", "13:00"),
		AfternoonTimeoutEarliest: get("AFTERNOON_TIMEOUT_EARLIEST", "17:30"),
		AfternoonClose:           get("AFTERNOON_CLOSE", "18:00"),

		PenaltyDefaultAmount: getDecimal("PENALTY_DEFAULT_AMOUNT", "5.00"),

		CronMorningSweep:   get("CRON_MORNING_SWEEP", "15 12 * * *"),
		CronAfternoonSweep: get("CRON_AFTERNOON_SWEEP", "0 18 * * *"),
		CronDailyArchive:   get("CRON_DAILY_ARCHIVE", "59 23 * * *"),
		JobTimeout:         getDuration("JOB_TIMEOUT", 10*time.Minute),

		SMTPHost: get("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: get("SMTP_USER", ""),
		SMTPPass: get("SMTP_PASS", ""),
		MailFrom: get("MAIL_FROM", "Attendance System <no-reply@localhost>"),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.Timezone,
	)
}

// Location resolves the canonical timezone; a bad name is a deploy error.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Fatalf("invalid ATTENDANCE_TZ %q: %v", c.Timezone, err)
	}
	return loc
}
