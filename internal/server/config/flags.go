package config

import (
	"flag"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   listen address
//	-d string   PostgreSQL DSN
//	-s string   JWT secret
//	-t int      issued token validity (hours)
//	-auth       require a bearer token on sync
//	-o string   comma-separated CORS origins
//	-m int      max decoded photo size (bytes)
//	-u, -p      S3 user and password
//	-b, -g, -e  S3 bucket, region and endpoint
//	-l string   log level
//
// Unknown arguments are ignored; a malformed value panics.
func parseFlags(cfg *Config, args []string) {
	fs, filtered := flagx.NewFilteredSet("server", args,
		[]string{"-a", "-d", "-s", "-t", "-auth", "-o", "-m", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "JWT secret key")
	validity := fs.Int("t", int(cfg.TokenValidity.Hours()), "issued token validity (in hours)")
	fs.BoolVar(&cfg.RequireAuth, "auth", cfg.RequireAuth, "require bearer token")
	origins := fs.String("o", "", "comma-separated CORS origins")
	fs.Int64Var(&cfg.MaxPhotoBytes, "m", cfg.MaxPhotoBytes, "max photo size in bytes")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.TokenValidity = time.Duration(*validity) * time.Hour
		case "o":
			cfg.AllowedOrigins = splitList(*origins)
		}
	})
}
