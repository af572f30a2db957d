// Package web serves the composite stream to browser viewers: an MJPEG
// endpoint for the video and a websocket feed of intensity readings.
// It exists for headless lab hosts where no native window is available.
package web

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/valyala/fasthttp"

	"github.com/watchtower-tools/aperture-tune/pkg/hub"
)

// Server is the browser-facing viewer server.
type Server struct {
	app  *fiber.App
	port string

	reference  string
	adjustment string

	frames       *frameStore
	intensityHub *hub.Hub

	started time.Time
}

// NewServer creates the viewer server for one camera pair.
func NewServer(port, reference, adjustment string) *Server {
	s := &Server{
		port:         port,
		reference:    reference,
		adjustment:   adjustment,
		frames:       newFrameStore(),
		intensityHub: hub.New("intensity"),
		started:      time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "aperture-tune viewer",
		DisableStartupMessage: true,
	})

	app.Get("/", s.handleIndex)
	app.Get("/stream", s.handleStream)
	app.Get("/api/status", s.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/intensity", websocket.New(s.handleIntensityWS))

	s.app = app
	return s
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	go s.intensityHub.Run(ctx)
	go func() {
		<-ctx.Done()
		s.frames.close()
		s.app.Shutdown()
	}()
	return s.app.Listen(":" + s.port)
}

// Addr returns the address viewers should open.
func (s *Server) Addr() string {
	return "http://localhost:" + s.port
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(indexHTML)
}

// handleStream writes the composite as multipart/x-mixed-replace, one
// JPEG part per published frame. Each viewer tails the latest frame;
// nothing is buffered for slow readers.
func (s *Server) handleStream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		var seq uint64
		for {
			data, next, ok := s.frames.next(seq)
			if !ok {
				return
			}
			seq = next
			if _, err := fmt.Fprintf(w,
				"--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
				len(data)); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\r\n")); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"reference":      s.reference,
		"adjustment":     s.adjustment,
		"viewers":        s.intensityHub.ClientCount(),
		"frames":         s.frames.sequence(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleIntensityWS(conn *websocket.Conn) {
	hub.NewClient(s.intensityHub, conn).Run()
}
