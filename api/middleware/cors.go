package middleware

import (
	"fmt"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/rs/cors"
)

// corsLogger routes rs/cors debug output through gecho.
type corsLogger struct {
	logger *gecho.Logger
}

func (l corsLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), gecho.Field("component", "cors"))
}

func (mw *Middleware) SetupCORS() *cors.Cors {
	c := mw.cfg.Cors
	return cors.New(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
		Debug:            mw.cfg.Server.Environment != "production",
		Logger:           corsLogger{logger: mw.logger},
	})
}
