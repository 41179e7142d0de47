package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/constants"
)

// CORS builds the cross-origin policy from configuration. An empty
// origin list allows all origins, for development setups.
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", constants.HeaderCompanyID},
		ExposeHeaders: []string{"X-Trace-ID", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	return cors.New(corsConfig)
}
