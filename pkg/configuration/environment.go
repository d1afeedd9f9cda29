package configuration

import (
	"os"

	"github.com/subosito/gotenv"
)

// LoadDotEnv reads a .env file from the working directory, if present,
// and applies variables that are not already set in the environment.
func LoadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	parsed := gotenv.Parse(file)
	for k, v := range parsed {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, v)
		}
	}
}
