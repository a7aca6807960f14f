package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode switches gin to release mode in production; everywhere
// else the default debug logging stays on.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
