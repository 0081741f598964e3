// Command drawclient joins a drawing room, mirrors its scene into an SVG file
// and can publish a rectangle.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawroom/internal/drawclient"
	"drawroom/internal/models"
	"drawroom/internal/scene"
	"drawroom/pkg/logger"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "server base URL")
		token    = flag.String("token", os.Getenv("DRAW_TOKEN"), "bearer token, skips signin")
		email    = flag.String("email", "", "account email used to sign in")
		password = flag.String("password", os.Getenv("DRAW_PASSWORD"), "account password")
		room     = flag.String("room", "", "room id")
		slug     = flag.String("slug", "", "room slug, resolved to an id")
		out      = flag.String("out", "scene.svg", "SVG output path")
		width    = flag.Int("width", 1280, "SVG width")
		height   = flag.Int("height", 720, "SVG height")
		rect     = flag.String("rect", "", `publish a rectangle "x,y,w,h" after joining`)
		follow   = flag.Duration("follow", 0, "keep applying broadcasts for this long, 0 until interrupted")
		level    = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger.Setup(logger.Options{Level: *level, Format: "text", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := drawclient.NewAPI(*server, nil)

	if *token == "" {
		if *email == "" {
			logger.Fatal("either -token or -email is required")
		}
		t, err := api.Signin(ctx, *email, *password)
		if err != nil {
			logger.Fatal("signin failed", logger.Err(err))
		}
		*token = t
	}

	roomID := models.RoomID(*room)
	if roomID == "" {
		if *slug == "" {
			logger.Fatal("either -room or -slug is required")
		}
		id, err := api.RoomBySlug(ctx, *slug)
		if err != nil {
			logger.Fatal("room lookup failed", logger.Err(err))
		}
		roomID = id
	}

	var shape scene.Shape
	if *rect != "" {
		r, err := parseRect(*rect)
		if err != nil {
			logger.Fatal("invalid -rect", logger.Err(err))
		}
		shape = r
	}

	client, err := drawclient.Dial(ctx, *server, *token)
	if err != nil {
		logger.Fatal("connect failed", logger.Err(err))
	}
	defer client.Close()

	engine := scene.NewEngine(roomID, api, scene.SVGFile{Path: *out, Width: *width, Height: *height})
	if err := drawclient.Sync(ctx, client, engine); err != nil {
		logger.Fatal("sync failed", logger.Err(err))
	}
	logger.Info("scene loaded", logger.Room(roomID.String()), "shapes", len(engine.Shapes()), "out", *out)

	if shape != nil {
		if err := drawclient.Draw(client, engine, shape); err != nil {
			logger.Fatal("publish failed", logger.Err(err))
		}
	}

	listenCtx := ctx
	if *follow > 0 {
		var cancel context.CancelFunc
		listenCtx, cancel = context.WithTimeout(ctx, *follow)
		defer cancel()
	}

	err = client.Listen(listenCtx, drawclient.Apply(engine))
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("connection lost", logger.Err(err))
	}
	logger.Info("done", logger.Room(roomID.String()), "shapes", len(engine.Shapes()), "at", time.Now().Format(time.RFC3339))
}
