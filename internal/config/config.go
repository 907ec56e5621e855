package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/drstein77/organicfilter/internal/models"
	"github.com/joho/godotenv"
)

const (
	defaultSource   = "data/latest-canonical.json"
	defaultOutput   = "data/organic-vienna.json"
	defaultMaxItems = 2000
	defaultTimeout  = 30 * time.Second
	defaultTable    = "products"
	defaultLogLevel = "info"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	source     string
	output     string
	policyFile string
	maxItems   int
	timeout    time.Duration
	table      string
	logLevel   string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
// Environment variables (optionally from a .env file) provide the defaults.
func (o *Options) ParseFlags(args []string) error {
	// Load environment variables from the .env file
	loadEnvFile()

	maxItems, err := getEnvIntOrDefault("MAX_ITEMS", defaultMaxItems)
	if err != nil {
		return err
	}
	timeout, err := getEnvDurationOrDefault("FETCH_TIMEOUT", defaultTimeout)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(programName(), flag.ContinueOnError)
	fs.StringVar(&o.source, "s", getEnvOrDefault("SOURCE", defaultSource), "dataset location: file path, http(s) URL or postgres DSN")
	fs.StringVar(&o.output, "o", getEnvOrDefault("OUTPUT", defaultOutput), "output file path")
	fs.StringVar(&o.policyFile, "p", getEnvOrDefault("POLICY_FILE", ""), "YAML file with stores, keep and exclude lists")
	fs.IntVar(&o.maxItems, "m", maxItems, "maximum number of items written")
	fs.DurationVar(&o.timeout, "t", timeout, "timeout for fetching the dataset")
	fs.StringVar(&o.table, "table", getEnvOrDefault("SOURCE_TABLE", defaultTable), "table read by the postgres source")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", defaultLogLevel), "log level")

	// parse the arguments into registered variables
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidConfig, err)
	}

	return o.Validate()
}

// Validate checks option values after parsing.
func (o *Options) Validate() error {
	var errs []error
	if o.source == "" {
		errs = append(errs, errors.New("source is empty"))
	}
	if o.output == "" {
		errs = append(errs, errors.New("output is empty"))
	}
	if o.maxItems < 1 {
		errs = append(errs, fmt.Errorf("max items must be positive, got %d", o.maxItems))
	}
	if o.timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", o.timeout))
	}
	if !tableName.MatchString(o.table) {
		errs = append(errs, fmt.Errorf("invalid table name %q", o.table))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (o *Options) Source() string {
	return o.source
}

func (o *Options) Output() string {
	return o.output
}

func (o *Options) PolicyFile() string {
	return o.policyFile
}

func (o *Options) MaxItems() int {
	return o.maxItems
}

func (o *Options) Timeout() time.Duration {
	return o.timeout
}

func (o *Options) Table() string {
	return o.table
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrInvalidConfig, key, err)
	}
	return n, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrInvalidConfig, key, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file in the working
// directory. Variables already set in the environment win.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("cannot determine working directory: %v", err)
		return
	}
	envPath := filepath.Join(cwd, ".env")

	if err := godotenv.Load(envPath); err == nil {
		log.Printf(".env file loaded from %s", envPath)
	}
}

func programName() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return "organicfilter"
}
