package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"parking_ledger/internal/domain"
)

type Config struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	FeeRatePerMinute decimal.Decimal
	Lots             []domain.ParkingLotDTO
	DisplayLocation  *time.Location

	OperatorUsername     string
	OperatorPasswordHash string // bcrypt
	JWTSecret            string
	JWTExpirationHours   time.Duration
}

// DefaultLots is the layout used when LOTS_FILE is not set.
func DefaultLots() []domain.ParkingLotDTO {
	return []domain.ParkingLotDTO{
		{ID: 1, Location: "Main Gate", Capacity: 5},
		{ID: 2, Location: "Mall Entrance", Capacity: 5},
	}
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	rate, err := decimal.NewFromString(getEnv("FEE_RATE_PER_MINUTE", "5"))
	if err != nil {
		return nil, fmt.Errorf("FEE_RATE_PER_MINUTE: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("FEE_RATE_PER_MINUTE: %s must not be negative", rate)
	}

	lots := DefaultLots()
	if path := getEnv("LOTS_FILE", ""); path != "" {
		lots, err = LoadLots(path)
		if err != nil {
			return nil, err
		}
	}

	loc := time.Local
	if name := getEnv("DISPLAY_TIMEZONE", ""); name != "" {
		loc, err = time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
		}
	}

	jwtExpHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "12"))
	if err != nil || jwtExpHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS: expected a positive integer, got %q", os.Getenv("JWT_EXPIRATION_HOURS"))
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),

		FeeRatePerMinute: rate,
		Lots:             lots,
		DisplayLocation:  loc,

		OperatorUsername:     getEnv("OPERATOR_USERNAME", ""),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirationHours:   time.Duration(jwtExpHours) * time.Hour,
	}, nil
}

type lotsFile struct {
	Lots []domain.ParkingLotDTO `yaml:"lots"`
}

// LoadLots reads a YAML lot layout:
//
//	lots:
//	  - id: 1
//	    location: Main Gate
//	    capacity: 5
func LoadLots(path string) ([]domain.ParkingLotDTO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lots file: %w", err)
	}
	return ParseLots(data)
}

func ParseLots(data []byte) ([]domain.ParkingLotDTO, error) {
	var f lotsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lots file: %w", err)
	}
	if len(f.Lots) == 0 {
		return nil, errors.New("lots file: at least one lot is required")
	}

	seen := make(map[int]bool, len(f.Lots))
	for _, lot := range f.Lots {
		if seen[lot.ID] {
			return nil, fmt.Errorf("lots file: duplicate lot id %d", lot.ID)
		}
		seen[lot.ID] = true
		if lot.Capacity < 0 {
			return nil, fmt.Errorf("lots file: lot %d has negative capacity", lot.ID)
		}
		if lot.Location == "" {
			return nil, fmt.Errorf("lots file: lot %d has no location", lot.ID)
		}
	}
	return f.Lots, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
