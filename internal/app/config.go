package app

import (
	"strings"
	"time"

	"github.com/haolun/policygraph-backend/internal/platform/envutil"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

type Config struct {
	Addr                  string
	AllowOrigins          []string
	NarrativeEnabled      bool
	NarrativeTimeout      time.Duration
	ThresholdProfilesPath string
}

func LoadConfig(log *logger.Logger) Config {
	addr := envutil.String("HTTP_ADDR", ":8080")
	narrativeTimeoutSeconds := envutil.Int("NARRATIVE_TIMEOUT_SECONDS", 180)

	var origins []string
	if raw := envutil.String("CORS_ALLOW_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg := Config{
		Addr:                  addr,
		AllowOrigins:          origins,
		NarrativeEnabled:      envutil.Bool("NARRATIVE_ENABLED", true),
		NarrativeTimeout:      time.Duration(narrativeTimeoutSeconds) * time.Second,
		ThresholdProfilesPath: envutil.String("THRESHOLD_PROFILES_PATH", ""),
	}
	log.Info("configuration loaded",
		"addr", cfg.Addr,
		"narrative_enabled", cfg.NarrativeEnabled,
		"threshold_profiles_path", cfg.ThresholdProfilesPath,
	)
	return cfg
}
