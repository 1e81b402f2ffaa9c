package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/identity/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8888")
//	-d string   repository DSN (postgres:// or mem://)
//	-k string   path to the private signing key file
//	-p string   path to the public verification key file
//	-i string   token issuer key
//	-n string   network interface id used for origin classification
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-p", "-i", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "repository DSN")
	fs.StringVar(&config.PrivateKeyPath, "k", config.PrivateKeyPath, "private signing key path")
	fs.StringVar(&config.PublicKeyPath, "p", config.PublicKeyPath, "public verification key path")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer key")
	fs.StringVar(&config.ServiceNicID, "n", config.ServiceNicID, "network interface id for origin classification")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
