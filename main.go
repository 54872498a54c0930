package main

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lifelongwellness/wellnessbackend/controllers"
	"github.com/lifelongwellness/wellnessbackend/mailer"
	"github.com/lifelongwellness/wellnessbackend/middleware"
	"github.com/lifelongwellness/wellnessbackend/utils"
)

// Preview deployments get per-branch hostnames, so the allow-list also
// matches them by pattern.
var previewOriginPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://lifelong-wellness-[a-z0-9-]+\.vercel\.app$`),
	regexp.MustCompile(`^https://lifelong-wellness-git-[a-z0-9-]+\.vercel\.app$`),
}

func allowOrigin(allowed map[string]bool) func(string) bool {
	return func(origin string) bool {
		if allowed[origin] {
			return true
		}
		for _, p := range previewOriginPatterns {
			if p.MatchString(origin) {
				return true
			}
		}
		return false
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	cfg, err := mailer.ConfigFromEnv()
	if err != nil {
		log.Fatal("invalid mail configuration", "err", err)
	}
	transport := mailer.NewTransport(cfg)
	dispatcher := mailer.NewDispatcher(cfg, transport, log.Default())

	// Verify the transport up front so credential problems surface in
	// the logs at boot instead of on the first submission.
	go verifyTransport(transport)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	v := utils.NewPaymentProofValidator()

	origins := utils.EnvDefault("ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:5173,http://localhost:8080,http://localhost:8081,https://lifelong-wellness.vercel.app")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Info("configured CORS allow-list", "origins", origins)

	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  allowOrigin(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTimeout())

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"message": "Method not allowed",
		})
	})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.POST("/api/send-email", controllers.SendEmail(v, dispatcher))
	r.GET("/api/health", controllers.Health(transport))

	port := utils.EnvDefault("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
		// Bounds the multipart parse stage separately from the send
		// budget, so a stalled upload cannot pin a handler.
		ReadTimeout:  25 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("starting server", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", "err", err)
	}
}

func verifyTransport(transport mailer.Sender) {
	const attempts = 3
	for i := 1; i <= attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := transport.Verify(ctx)
		cancel()
		if err == nil {
			log.Info("SMTP connection verified")
			return
		}
		log.Error("SMTP verification failed", "attempt", i, "of", attempts, "err", err)
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	if os.Getenv("APP_ENV") == "development" {
		log.Warn("continuing without verified SMTP transport")
	}
}
