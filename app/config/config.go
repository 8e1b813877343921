package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DB            *sql.DB
	SchoolName    string
	SchoolAddress string
	SchoolPhone   string
	Currency      string
}

var AppConfig *Config

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// InitDB loads the environment, opens the Postgres pool and fills AppConfig.
func InitDB() {
	// Best effort: a missing .env just means the environment is already set
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "student_finance_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s", host, port, user, dbname, sslmode)
	if password != "" {
		psqlInfo += " password=" + password
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Printf("Connecting to database %s at %s:%s...", dbname, host, port)
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{
		DB:            db,
		SchoolName:    getEnv("SCHOOL_NAME", "Jamhuri Secondary School"),
		SchoolAddress: getEnv("SCHOOL_ADDRESS", "P.O. Box 12345, Nairobi, Kenya"),
		SchoolPhone:   getEnv("SCHOOL_PHONE", "+254 700 123 456"),
		Currency:      getEnv("CURRENCY", "KSh"),
	}
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}
