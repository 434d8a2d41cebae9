package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseHost  string
	DatabaseUser  string
	DatabasePass  string
	DatabaseName  string
	DatabasePort  string
	SessionSecret string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // default port
	}

	cfg := &Config{
		Port:          port,
		DatabaseHost:  os.Getenv("DATABASE_HOST"),
		DatabaseUser:  os.Getenv("DATABASE_USER"),
		DatabasePass:  os.Getenv("DATABASE_PASSWORD"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),
		DatabasePort:  os.Getenv("DATABASE_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	required := []struct {
		name, value string
	}{
		{"DATABASE_HOST", cfg.DatabaseHost},
		{"DATABASE_USER", cfg.DatabaseUser},
		{"DATABASE_PASSWORD", cfg.DatabasePass},
		{"DATABASE_NAME", cfg.DatabaseName},
		{"DATABASE_PORT", cfg.DatabasePort},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	for _, v := range required {
		if v.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", v.name)
		}
	}

	return cfg, nil
}

// DatabaseURL builds the Postgres connection string from the individual parts.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DatabaseUser, c.DatabasePass, c.DatabaseHost, c.DatabasePort, c.DatabaseName)
}
