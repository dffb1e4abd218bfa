package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/urfave/cli"

	"github.com/Andrej220/go-utils/thumbq"
)

var thumbFlags = []cli.Flag{
	cli.IntFlag{
		Name:   "height, H",
		Usage:  "thumbnail height in pixels",
		Value:  128,
		EnvVar: "THUMBQ_HEIGHT",
	},
	cli.StringFlag{
		Name:   "out, o",
		Usage:  "output directory",
		Value:  "thumbs",
		EnvVar: "THUMBQ_OUT",
	},
	cli.IntFlag{
		Name:  "linger",
		Usage: "empty polls the worker waits through before stopping",
	},
	cli.BoolFlag{
		Name:  "low-priority",
		Usage: "run the worker on a low priority thread (linux)",
	},
	cli.DurationFlag{
		Name:  "timeout",
		Usage: "give up waiting for thumbnails after this long",
		Value: time.Minute,
	},
}

const pollInterval = 20 * time.Millisecond

func thumbnail(c *cli.Context) error {
	paths := c.Args()
	if len(paths) == 0 {
		return cli.NewExitError("no input images", 2)
	}
	height := c.Int("height")
	if height <= 0 {
		return cli.NewExitError(fmt.Sprintf("invalid height %d", height), 2)
	}
	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	logger := lg.FromContext(ctx)

	opts := thumbq.Options{
		LowPriority: c.Bool("low-priority"),
		OnJobError: func(err error) {
			logger.Error("thumbnail failed", lg.Any("error", err))
		},
		OnInternalError: func(err error) {
			logger.Warn("scheduler", lg.Any("error", err))
		},
	}
	if n := c.Int("linger"); n > 0 {
		opts.Linger = thumbq.GetDefaultLinger()
		opts.Linger.Attempts = n
	}

	m := &thumbq.AtomicMetrics{}
	s := thumbq.New(ctx, m, opts)
	defer s.Close()

	submitted := submitAll(ctx, s, paths, height, outDir)

	waitCtx, stop := context.WithTimeout(ctx, c.Duration("timeout"))
	defer stop()
	if err := waitSettled(waitCtx, m, uint64(submitted)); err != nil {
		return fmt.Errorf("waiting for thumbnails: %w", err)
	}

	logger.Info("done",
		lg.Int("submitted", submitted),
		lg.Any("delivered", m.Delivered()),
		lg.Any("coalesced", m.Coalesced()),
		lg.Any("dropped", m.Dropped()),
	)
	if m.Dropped() > 0 {
		return errors.New("some thumbnails failed")
	}
	return nil
}

// source is a decoded input file with the sink its thumbnail goes to.
type source struct {
	img  rgbImage
	sink *fileSink
}

// submitAll submits one job per path and returns how many were accepted.
// A file listed more than once is decoded once and submitted again with the
// same buffer and sink, so the repeat coalesces while the first is queued.
func submitAll(ctx context.Context, s *thumbq.Scheduler[*thumbq.AtomicMetrics], paths []string, height int, outDir string) int {
	logger := lg.FromContext(ctx)
	loaded := make(map[string]*source, len(paths))

	submitted := 0
	for _, path := range paths {
		key := absPath(path)
		src, seen := loaded[key]
		if !seen {
			img, err := loadRGB(path)
			if err != nil {
				logger.Warn("skipping image", lg.String("path", path), lg.Any("error", err))
			} else {
				src = &source{img: img, sink: &fileSink{path: outputPath(outDir, path), ctx: ctx}}
			}
			loaded[key] = src
		}
		if src == nil {
			continue
		}
		if err := s.Submit(src.img.buf, src.img.width, src.img.height, height, src.sink); err != nil {
			logger.Warn("skipping image", lg.String("path", path), lg.Any("error", err))
			continue
		}
		submitted++
	}
	return submitted
}

// waitSettled polls until want submissions were delivered, dropped or
// folded into an earlier one.
func waitSettled(ctx context.Context, m *thumbq.AtomicMetrics, want uint64) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if m.Delivered()+m.Dropped()+m.Coalesced() >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func outputPath(dir, src string) string {
	base := filepath.Base(src)
	return filepath.Join(dir, base[:len(base)-len(filepath.Ext(base))]+".thumb.png")
}
