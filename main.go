package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cajaflow/internal/api"
	"cajaflow/internal/config"
	"cajaflow/internal/database"
	"cajaflow/internal/logger"
	"cajaflow/internal/migrations"
	"cajaflow/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer zlog.Sync()

	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	hub := stream.NewHub(api.SnapshotLoader(db), zlog)
	handler := api.New(db, cfg.Secret, hub, zlog)

	zlog.Info("cajaflow server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
