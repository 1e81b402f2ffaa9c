package config

import "os"

// parseEnv overlays selected Config fields from environment variables.
// Only secrets and deployment-specific values are exposed this way; anything
// structural belongs in the JSON file or flags.
//
// Recognized variables:
//
//	IDENTITY_DATABASE_DSN     repository DSN
//	IDENTITY_PRIVATE_KEY_PWD  private key passphrase
//	IDENTITY_SYSTEM_PASSWORD  bootstrap system user password
//	IDENTITY_SMTP_PASSWORD    SMTP relay password
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("IDENTITY_DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("IDENTITY_PRIVATE_KEY_PWD"); ok {
		config.PrivateKeyPassword = v
	}
	if v, ok := os.LookupEnv("IDENTITY_SYSTEM_PASSWORD"); ok {
		config.SystemPassword = v
	}
	if v, ok := os.LookupEnv("IDENTITY_SMTP_PASSWORD"); ok {
		config.SMTP.Password = v
	}
}
