// Command aperture-adjust displays two live camera streams side by
// side with mean center-region intensity overlays, to aid in manually
// matching camera apertures.
//
// Usage:
//
//	aperture-adjust <reference_serial> <adjustment_serial>
//
// Press q in the video window to quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/watchtower-tools/aperture-tune/internal/httpc"
	"github.com/watchtower-tools/aperture-tune/internal/log"
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

	log.Init("info")

	cfg := watchtower.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

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
		session.NewWindowSink("Aperture Adjustment"),
		cfg.RegionFraction,
	)

	err := sess.Run(context.Background())

	var openErr *session.OpenError
	if errors.As(err, &openErr) {
		log.Error("could not open camera stream",
			"camera", openErr.Serial, "error", openErr.Unwrap())
		os.Exit(1)
	}
	if err != nil {
		// A mid-stream failure stops the run but is not an abnormal
		// exit; everything was already released.
		log.Error("camera stream failed", "error", err)
	}
}
