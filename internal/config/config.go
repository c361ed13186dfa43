package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Discord credentials come
// from the application registered in the Discord developer portal.
type Config struct {
	Env            string   // application environment (e.g. "dev", "prod")
	Port           string   // HTTP port to listen on
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	JWTSecret      string   // secret used to sign session JWTs
	AccessTTLMin   int      // access token time-to-live in minutes
	RefreshTTLDays int      // refresh token time-to-live in days
	ClientID       string   // Discord OAuth application id
	ClientSecret   string   // Discord OAuth application secret
	RedirectURI    string   // OAuth callback URL registered with Discord
	Scopes         []string // OAuth scopes, comma separated in the env var
	Registration   bool     // whether unseen Discord accounts may sign up
	ServiceKeyHash string   // bcrypt hash of the delivery backend's service key
	RabbitURL      string   // AMQP broker URL for onboarding signal events (optional)
}

// Load reads configuration from the environment.  A .env file in the
// working directory is merged in first when present; real environment
// variables win over file values.  Required variables are enforced by
// must() and missing values cause the program to exit with a fatal
// log message.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		ClientID:       must("DISCORD_CLIENT_ID"),
		ClientSecret:   must("DISCORD_CLIENT_SECRET"),
		RedirectURI:    must("DISCORD_REDIRECT_URI"),
		Scopes:         splitScopes(envStr("DISCORD_SCOPES", "identify")),
		Registration:   envBool("REGISTRATION_ENABLED", true),
		ServiceKeyHash: must("SERVICE_KEY_HASH"),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
	}
}

func splitScopes(s string) []string {
	parts := strings.Split(s, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			scopes = append(scopes, p)
		}
	}
	return scopes
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
