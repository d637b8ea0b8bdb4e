package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=core_banking_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "FinaDemApp"
const defaultChannelKey = "FinaDemKey001"
const defaultSettlementCurrency = "EUR"
const defaultIBANCountryCode = "DE"
const defaultIBANBankCode = "50010517"
const defaultRateAPIURL = "https://api.freecurrencyapi.com/v1/latest"

type Config struct {
	DatabaseDSN        string
	MigrationsDir      string
	HTTPAddr           string
	ChannelID          string
	ChannelKey         string
	SettlementCurrency string
	IBANCountryCode    string
	IBANBankCode       string
	RateAPIURL         string
	RateAPIKey         string
	RedisAddr          string
	AMQPURL            string
}

func Load() (Config, error) {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	return Config{
		DatabaseDSN:        normalizeConnectionString(envOrDefault("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:      envOrDefault("MIGRATIONS_DIR", "migrations"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", defaultHTTPAddr),
		ChannelID:          envOrDefault("CHANNEL_ID", defaultChannelID),
		ChannelKey:         envOrDefault("CHANNEL_KEY", defaultChannelKey),
		SettlementCurrency: strings.ToUpper(envOrDefault("SETTLEMENT_CURRENCY", defaultSettlementCurrency)),
		IBANCountryCode:    strings.ToUpper(envOrDefault("IBAN_COUNTRY_CODE", defaultIBANCountryCode)),
		IBANBankCode:       envOrDefault("IBAN_BANK_CODE", defaultIBANBankCode),
		RateAPIURL:         envOrDefault("RATE_API_URL", defaultRateAPIURL),
		RateAPIKey:         strings.TrimSpace(os.Getenv("RATE_API_KEY")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		AMQPURL:            strings.TrimSpace(os.Getenv("AMQP_URL")),
	}, nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// normalizeConnectionString rewrites a Host=..;Port=.. style connection
// string into the key=value form lib/pq expects. Strings already in
// lib/pq form pass through unchanged.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
