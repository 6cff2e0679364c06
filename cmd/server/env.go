package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/infrastructure/ledger"
)

// loadDotEnv reads .env when present. Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("failed to read .env: %v\n", err)
	}
}

// intakeConfig reads the GRN_* settings over goods_receipt.DefaultConfig.
func intakeConfig() goods_receipt.Config {
	cfg := goods_receipt.DefaultConfig()
	cfg.TxTimeout = getEnvDuration("GRN_TX_TIMEOUT", cfg.TxTimeout)
	cfg.LockTimeout = getEnvDuration("GRN_LOCK_TIMEOUT", cfg.LockTimeout)
	cfg.DuplicateLookback = getEnvDuration("GRN_DUPLICATE_LOOKBACK", cfg.DuplicateLookback)
	cfg.StripFactor = getEnvDecimal("GRN_STRIP_FACTOR", cfg.StripFactor)
	cfg.AttachmentInlineLimit = getEnvInt("GRN_ATTACHMENT_INLINE_LIMIT", cfg.AttachmentInlineLimit)
	cfg.NumberPrefix = getEnv("GRN_NUMBER_PREFIX", cfg.NumberPrefix)
	cfg.InvoicePrefix = getEnv("GRN_INVOICE_PREFIX", cfg.InvoicePrefix)
	cfg.PricingRules = getEnv("GRN_PRICING_RULES", cfg.PricingRules)
	return cfg
}

// ledgerAccounts reads the LEDGER_*_ACCOUNT codes over ledger.DefaultAccounts.
func ledgerAccounts() ledger.Accounts {
	acc := ledger.DefaultAccounts()
	acc.Inventory = getEnv("LEDGER_INVENTORY_ACCOUNT", acc.Inventory)
	acc.InputTax = getEnv("LEDGER_INPUT_TAX_ACCOUNT", acc.InputTax)
	acc.Payable = getEnv("LEDGER_PAYABLE_ACCOUNT", acc.Payable)
	return acc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
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

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil && d.IsPositive() {
			return d
		}
	}
	return defaultValue
}
