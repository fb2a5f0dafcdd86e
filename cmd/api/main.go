package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/salaohub/salon-scheduler/internal/config"
	dbpkg "github.com/salaohub/salon-scheduler/internal/db"
	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/routes"
	"github.com/salaohub/salon-scheduler/internal/scheduler"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	sched := scheduler.New(db, gateway.NewClient(cfg), interaction.NewRecorder(db))
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
