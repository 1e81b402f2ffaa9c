package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/identity/internal/flagx"
	"github.com/dmitrijs2005/identity/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "4h" and integer nanoseconds. After
// unmarshalling, non-zero fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	PrivateKeyPath       string         `json:"private_key_path"`
	PrivateKeyPassword   string         `json:"private_key_password"`
	PublicKeyPath        string         `json:"public_key_path"`
	Issuer               string         `json:"issuer"`
	TokenValidity        timex.Duration `json:"token_validity"`
	PasswordHashCost     int            `json:"password_hash_cost"`
	BypassUserActivation *bool          `json:"bypass_user_activation"`
	SystemUser           string         `json:"system_user"`
	SystemPassword       string         `json:"system_password"`
	FailureDelay         timex.Duration `json:"failure_delay"`
	ServiceNicID         string         `json:"service_nic_id"`
	SMTP                 struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Secure   *bool  `json:"secure"`
		User     string `json:"user"`
		Password string `json:"password"`
	} `json:"smtp"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. Fields absent from the
// file keep their current values. An unreadable or invalid file panics,
// since running with half-applied configuration is worse than not starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.PrivateKeyPath != "" {
		config.PrivateKeyPath = c.PrivateKeyPath
	}
	if c.PrivateKeyPassword != "" {
		config.PrivateKeyPassword = c.PrivateKeyPassword
	}
	if c.PublicKeyPath != "" {
		config.PublicKeyPath = c.PublicKeyPath
	}
	if c.Issuer != "" {
		config.Issuer = c.Issuer
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
	if c.BypassUserActivation != nil {
		config.BypassUserActivation = *c.BypassUserActivation
	}
	if c.SystemUser != "" {
		config.SystemUser = c.SystemUser
	}
	if c.SystemPassword != "" {
		config.SystemPassword = c.SystemPassword
	}
	if c.FailureDelay.Duration != 0 {
		config.FailureDelay = c.FailureDelay.Duration
	}
	if c.ServiceNicID != "" {
		config.ServiceNicID = c.ServiceNicID
	}
	if c.SMTP.Host != "" {
		config.SMTP.Host = c.SMTP.Host
	}
	if c.SMTP.Port != 0 {
		config.SMTP.Port = c.SMTP.Port
	}
	if c.SMTP.Secure != nil {
		config.SMTP.Secure = *c.SMTP.Secure
	}
	if c.SMTP.User != "" {
		config.SMTP.User = c.SMTP.User
	}
	if c.SMTP.Password != "" {
		config.SMTP.Password = c.SMTP.Password
	}
}
