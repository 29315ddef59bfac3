package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// ServerURL is the websocket endpoint of the game server.
	ServerURL string
	// Token is the access token obtained from the auth endpoints.
	Token string
	Debug bool
}

// Load reads configuration from the environment, with a local .env file
// as a convenience override for development.
func Load() Config {
	_ = godotenv.Load() // missing .env is fine

	return Config{
		ServerURL: getenv("RENJU_SERVER_URL", "ws://localhost:8000/renju/ws"),
		Token:     os.Getenv("RENJU_TOKEN"),
		Debug:     os.Getenv("RENJU_DEBUG") == "1",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
