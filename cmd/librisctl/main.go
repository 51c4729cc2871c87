package main

import (
	"context"
	stdlog "log"

	"github.com/libris-app/libris/cmd/librisctl/cmd"
	"github.com/libris-app/libris/tracing"
)

func main() {
	tp, err := tracing.InitTracerProvider("libris-librisctl")
	if err != nil {
		stdlog.Fatalf("Failed to initialize TracerProvider: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			stdlog.Printf("Error shutting down TracerProvider: %v", err)
		}
	}()

	cmd.Execute()
}
