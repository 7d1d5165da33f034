package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustStore checks the variables the selected store driver needs.
func (c Config) MustStore() {
	switch c.StoreDriver {
	case "postgres", "sqlite":
		MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	case "mongo":
		MustNonEmpty(c.MongoURI, "MONGO_URI")
	default:
		log.Fatalf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
}
