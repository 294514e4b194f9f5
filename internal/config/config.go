package config

import (
	"log"
	"os"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	PaymentSecret string
	GatewayURL    string
	PushEndpoint  string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "shopreel.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./shopreel.log"
	}
	secret := os.Getenv("PAYMENT_SECRET")
	if secret == "" {
		secret = "dev-payment-secret" // never ship the default
	}
	gw := os.Getenv("GATEWAY_URL")
	if gw == "" {
		gw = "https://api.razorpay.test"
	}
	push := os.Getenv("PUSH_ENDPOINT") // empty disables push delivery

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, PaymentSecret: secret, GatewayURL: gw, PushEndpoint: push}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s GATEWAY_URL=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.GatewayURL)
	return cfg
}
