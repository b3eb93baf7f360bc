// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-cert-trust-guard/src/version"
)

var version string // set by ldflags or defaults to imported version

// cleanupWait bounds how long a signalled run may take to stop; serve
// needs it for its graceful shutdown.
const cleanupWait = 10 * time.Second

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Command failed: %v", err)
			os.Exit(1)
		}
		if cli.OperationPerformed && cli.OperationPerformedSuccessfully {
			log.Println("TLS certificate trust guard finished.")
		}
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		select {
		case <-done:
		case <-time.After(cleanupWait):
		}
		os.Exit(130) // Standard exit code for SIGINT
	}
}
