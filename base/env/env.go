package env

import (
	"os"

	"github.com/spf13/viper"
)

// PodName example: k8ssta-catalog-main-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// EnvName example: k8ssta. Config key env_name wins over ENV_NAME.
func EnvName() string {
	return lookup("env_name", "ENV_NAME")
}

// AppName example: catalog. Config key app_name wins over APP_NAME.
func AppName() string {
	return lookup("app_name", "APP_NAME")
}

func lookup(key, envKey string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envKey)
}
