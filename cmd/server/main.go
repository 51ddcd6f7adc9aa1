package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sultan0alshami/wathiq-sub001/internal/flagx"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
	"github.com/sultan0alshami/wathiq-sub001/internal/server"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/auth"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	if user := issueTokenFor(os.Args[1:]); user != "" {
		if err := printToken(os.Stdout, user, cfg); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.LogLevel, os.Stderr)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}

}

// issueTokenFor returns the user named by -issue-token, if any.
func issueTokenFor(args []string) string {
	var user string
	fs, filtered := flagx.NewFilteredSet("issue-token", args, []string{"-issue-token"})
	fs.StringVar(&user, "issue-token", "", "print a bearer token for this user and exit")
	if err := fs.Parse(filtered); err != nil {
		return ""
	}
	return user
}

func printToken(w io.Writer, user string, cfg *config.Config) error {
	tok, err := auth.GenerateToken(user, []byte(cfg.SecretKey), cfg.TokenValidity)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}
