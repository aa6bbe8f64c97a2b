package config

import (
	"log"
	"os"
	"sync"
)

type AdminConfig struct {
	ID     string
	Pass   string
	Secret string
}

var (
	adminConfig *AdminConfig
	adminOnce   sync.Once
)

func LoadAdminConfig() *AdminConfig {
	adminOnce.Do(func() {
		secret := os.Getenv("ADMIN_SECRET")
		if secret == "" {
			secret = os.Getenv("ADMIN_PASS")
			log.Println("Warning: ADMIN_SECRET not set, falling back to ADMIN_PASS")
		}
		adminConfig = &AdminConfig{
			ID:     os.Getenv("ADMIN_ID"),
			Pass:   os.Getenv("ADMIN_PASS"),
			Secret: secret,
		}
	})
	return adminConfig
}
