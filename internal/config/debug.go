package config

import "os"

func IsDebug() bool {
	return os.Getenv("MEDIVISE_DEBUG") == "1"
}
