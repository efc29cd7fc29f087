package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	HostAddr         = "HOST_ADDR"
	HostSecret       = "HOST_SECRET"
	LogLevel         = "LOG_LEVEL"
	WidgetPlatform   = "WIDGET_PLATFORM"
	WidgetURL        = "WIDGET_URL"
	ChatRedisURL     = "CHAT_REDIS_URL"
	ChatRedisPass    = "CHAT_REDIS_PASS"
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
)

// ServeRequired lists the variables the host service refuses to start without.
var ServeRequired = []string{
	HostSecret,
	ChatRedisURL,
	AWSRegion,
}

// Load reads .env files into the process environment. Missing files are not an error.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("env: load %s: %w", strings.Join(existing, ","), err)
	}
	return nil
}

// Require returns an error naming every unset key.
func Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
