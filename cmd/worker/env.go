package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"backoffice/internal/infrastructure/ledger"
)

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("failed to read .env: %v\n", err)
	}
}

// ledgerAccounts must match the server's so retried postings hit the same accounts.
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
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil && result > 0 {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
