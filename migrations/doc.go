// Package migrations holds the PostgreSQL schema, applied in file-name order.
package migrations
