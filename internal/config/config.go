package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by FACTENGINE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("FACTENGINE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL enables the Postgres place directory when set.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// DefaultPlacesFile is the bundled place list.
const DefaultPlacesFile = "data/places.yaml"

// PlacesFile is a YAML place list loaded into the in-memory directory when
// no database is configured. explicit is false when the default applies.
func PlacesFile() (path string, explicit bool) {
	if p := os.Getenv("PLACES_FILE"); p != "" {
		return p, true
	}
	return DefaultPlacesFile, false
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// CalcVersion returns the calculation version stamped on every contract.
// Defaults to "1.0.0" if not set.
func CalcVersion() string {
	v := os.Getenv("CALC_VERSION")
	if v == "" {
		return "1.0.0"
	}
	return v
}

// EphemerisProvider returns the configured ephemeris engine.
// Defaults to "analytic" if not set.
// Valid values: analytic, mock
func EphemerisProvider() string {
	p := os.Getenv("EPHEMERIS_PROVIDER")
	if p == "" {
		return "analytic"
	}
	return p
}

// HouseSystem returns the house system used in full precision mode.
// Valid values: placidus, porphyry, equal, whole_sign
func HouseSystem() string {
	h := os.Getenv("HOUSE_SYSTEM")
	if h == "" {
		return "placidus"
	}
	return h
}

// ComputeAPIKey is the bearer key required on /v1 routes. Empty disables auth.
func ComputeAPIKey() string {
	return os.Getenv("COMPUTE_API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// TZDataVersion identifies the timezone database rules resolved times depend
// on. TZDATA_VERSION wins; otherwise the version line of the system tzdata.zi
// is used, and "system" when neither is available. The result always carries
// the "tzdata:" prefix.
func TZDataVersion() string {
	v := strings.TrimSpace(os.Getenv("TZDATA_VERSION"))
	if v == "" {
		v = systemTZDataVersion(tzdataPaths())
	}
	if v == "" {
		v = "system"
	}
	if strings.HasPrefix(v, "tzdata:") {
		return v
	}
	return "tzdata:" + v
}

func tzdataPaths() []string {
	paths := []string{
		"/usr/share/zoneinfo/tzdata.zi",
		"/usr/share/lib/zoneinfo/tzdata.zi",
	}
	if zi := os.Getenv("ZONEINFO"); zi != "" {
		paths = append([]string{filepath.Join(zi, "tzdata.zi")}, paths...)
	}
	return paths
}

func systemTZDataVersion(paths []string) string {
	for _, p := range paths {
		if v := readTZDataVersion(p); v != "" {
			return v
		}
	}
	return ""
}

// readTZDataVersion returns the release from a "# version 2024a" header line.
func readTZDataVersion(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for i := 0; i < 5 && sc.Scan(); i++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 3 && fields[0] == "#" && fields[1] == "version" {
			return fields[2]
		}
	}
	return ""
}
