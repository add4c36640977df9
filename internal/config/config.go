package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DBDSN        string
	MediaDir     string
	BaseURL      string
	LogFile      string
	MonthlyQuota int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "gaadibazaar.db"
	} // sqlite file in project root
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./web/media"
	}
	base := os.Getenv("BASE_URL")
	if base == "" {
		// Used to build listing and image links in the syndication feed.
		base = "http://localhost:" + port
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./gaadibazaar.log" // default log sink in project root
	}
	quota := 100 // default monthly upload limit per partner
	if v := os.Getenv("MONTHLY_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			quota = n
		}
	}

	cfg := Config{Port: port, DBDSN: dsn, MediaDir: media, BaseURL: base, LogFile: logFile, MonthlyQuota: quota}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s BASE_URL=%s LOG_FILE=%s MONTHLY_QUOTA=%d",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.BaseURL, cfg.LogFile, cfg.MonthlyQuota)
	return cfg
}
