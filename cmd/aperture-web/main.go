// Command aperture-web runs the same side-by-side intensity pipeline as
// aperture-adjust but renders to a browser instead of a native window,
// for lab hosts without a display. The composite is served as an MJPEG
// stream and intensity readings go out over a websocket.
//
// Usage:
//
//	aperture-web <reference_serial> <adjustment_serial>
//
// The listen port comes from the PORT env var (default 8088). Stop with
// Ctrl+C.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/watchtower-tools/aperture-tune/internal/config"
	"github.com/watchtower-tools/aperture-tune/internal/httpc"
	"github.com/watchtower-tools/aperture-tune/internal/log"
	"github.com/watchtower-tools/aperture-tune/internal/web"
	"github.com/watchtower-tools/aperture-tune/pkg/mjpeg"
	"github.com/watchtower-tools/aperture-tune/pkg/session"
	"github.com/watchtower-tools/aperture-tune/pkg/watchtower"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <reference_serial> <adjustment_serial>\n", os.Args[0])
		os.Exit(2)
	}
	refSerial, adjSerial := os.Args[1], os.Args[2]

	log.Init(config.LogLevel())

	cfg := watchtower.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(config.WebPort(), refSerial, adjSerial)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error("viewer server stopped", "error", err)
		}
	}()
	log.Info("viewer ready", "addr", srv.Addr())

	client := httpc.NewStreamingClient(cfg.InsecureTLS)
	open := func(serial string) session.OpenFunc {
		return func(ctx context.Context) (session.FrameSource, error) {
			stream, err := mjpeg.Open(ctx, client, cfg.StreamURL(serial))
			if err != nil {
				return nil, err
			}
			return stream, nil
		}
	}

	sess := session.New(
		session.Camera{
			Serial: refSerial,
			Label:  "Reference: " + refSerial,
			Open:   open(refSerial),
		},
		session.Camera{
			Serial: adjSerial,
			Label:  "Adjust: " + adjSerial,
			Open:   open(adjSerial),
		},
		web.NewSink(srv),
		cfg.RegionFraction,
	)

	err := sess.Run(ctx)
	stop()

	var openErr *session.OpenError
	if errors.As(err, &openErr) {
		log.Error("could not open camera stream",
			"camera", openErr.Serial, "error", openErr.Unwrap())
		os.Exit(1)
	}
	if err != nil {
		log.Error("camera stream failed", "error", err)
	}
}
