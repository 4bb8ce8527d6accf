package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs   int
	NotifyQueueKey string

	// PlatformAccountID is the system user that collects every fee.
	PlatformAccountID string

	MatchBatchSize      int
	MatchCronSpec       string
	LiquidationCronSpec string
	ExpiryCronSpec      string

	OfferTTLDays       int
	ApplicationTTLDays int

	OriginationFeePct       decimal.Decimal
	LenderFeeIndividualPct  decimal.Decimal
	LenderFeeInstitutionPct decimal.Decimal
	LiquidationFeePct       decimal.Decimal
	EarlySettlementFeePct   decimal.Decimal
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDecimal(k, d string) decimal.Decimal {
	if v := os.Getenv(k); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			return n
		}
	}
	out, _ := decimal.NewFromString(d)
	return out
}

func Load() *Config {
	// opportunistic; env vars win over .env
	_ = godotenv.Load()

	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "coinlend"),
		MySQLUser: getenv("MYSQL_USER", "coinlend"),
		MySQLPass: getenv("MYSQL_PASS", "coinlend"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: getenv("REDIS_PASS", ""),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs:   getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		NotifyQueueKey: getenv("NOTIFY_QUEUE_KEY", "notify:events"),

		PlatformAccountID: getenv("PLATFORM_ACCOUNT_ID", "00000000000000000000000000000001"),

		MatchBatchSize:      getenvInt("MATCH_BATCH_SIZE", 50),
		MatchCronSpec:       getenv("MATCH_CRON_SPEC", "@hourly"),
		LiquidationCronSpec: getenv("LIQUIDATION_CRON_SPEC", "@every 5m"),
		ExpiryCronSpec:      getenv("EXPIRY_CRON_SPEC", "@hourly"),

		OfferTTLDays:       getenvInt("OFFER_TTL_DAYS", 30),
		ApplicationTTLDays: getenvInt("APPLICATION_TTL_DAYS", 14),

		OriginationFeePct:       getenvDecimal("ORIGINATION_FEE_PCT", "3"),
		LenderFeeIndividualPct:  getenvDecimal("LENDER_FEE_INDIVIDUAL_PCT", "10"),
		LenderFeeInstitutionPct: getenvDecimal("LENDER_FEE_INSTITUTION_PCT", "5"),
		LiquidationFeePct:       getenvDecimal("LIQUIDATION_FEE_PCT", "2"),
		EarlySettlementFeePct:   getenvDecimal("EARLY_SETTLEMENT_FEE_PCT", "1"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.PlatformAccountID) != 32 {
		return errors.New("PLATFORM_ACCOUNT_ID must be a 32-char id")
	}
	if c.MatchBatchSize <= 0 {
		return errors.New("MATCH_BATCH_SIZE must be positive")
	}
	hundred := decimal.NewFromInt(100)
	for _, pct := range []decimal.Decimal{
		c.OriginationFeePct, c.LenderFeeIndividualPct, c.LenderFeeInstitutionPct,
		c.LiquidationFeePct, c.EarlySettlementFeePct,
	} {
		if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
			return fmt.Errorf("fee percentage %s out of range [0,100)", pct)
		}
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
