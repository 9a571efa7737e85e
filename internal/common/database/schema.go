// internal/common/database/schema.go
package database

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255),
		age INTEGER,
		constitution VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS assessments (
		id UUID PRIMARY KEY,
		user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
		email VARCHAR(255),
		constitution VARCHAR(64) NOT NULL,
		primary_dosha VARCHAR(16) NOT NULL,
		secondary_dosha VARCHAR(16),
		scores JSONB NOT NULL,
		answers JSONB NOT NULL,
		recommendations JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_email_created ON assessments (email, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS newsletter_subscriptions (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		source VARCHAR(100) NOT NULL DEFAULT 'unknown',
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		unsubscribed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS library_items (
		id VARCHAR(100) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		content_type VARCHAR(50) NOT NULL,
		description TEXT,
		url TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS lead_magnet_downloads (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255),
		ip_address VARCHAR(64),
		user_agent TEXT,
		downloaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS premium_subscriptions (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		tier VARCHAR(50) NOT NULL,
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		currency VARCHAR(8) NOT NULL DEFAULT 'usd',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		stripe_customer_id VARCHAR(255),
		stripe_subscription_id VARCHAR(255),
		activated_at TIMESTAMPTZ,
		canceled_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
