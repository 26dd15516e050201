package main

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const (
	readBufferSize  = 64 * 1024  // 64KB
	writeBufferSize = 128 * 1024 // 128KB
	maxProcessTime  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second

	// upper bound on seeds per request
	MaxServeSeeds = 100000

	hitFileField = "file"
)

func Init(e *echo.Echo) {
	e.HideBanner = true
	setController(e)
}

func setController(e *echo.Echo) {
	e.POST("/generate", func(c echo.Context) error { return GenerateHits(c) })
	e.POST("/summary", func(c echo.Context) error { return SummarizeHits(c) })
}

// Serve runs the http server until SIGINT or SIGTERM.
func Serve(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	Init(e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func validateFileType(fileHeader *multipart.FileHeader) error {
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".csv" {
		logger.Errorf("hit file %s has unsupported type %q", fileHeader.Filename, ext)
		return fmt.Errorf("hit file must be a .csv file, got %q", ext)
	}
	return nil
}

// fetchHitFile returns the uploaded hit file header without reading the body.
func fetchHitFile(form *multipart.Form) (*multipart.FileHeader, error) {
	files := form.File[hitFileField]
	if len(files) == 0 {
		logger.Errorf("form has no %q field", hitFileField)
		return nil, fmt.Errorf("no hit file in form field %q", hitFileField)
	}
	fileHeader := files[0]
	if fileHeader.Size == 0 {
		logger.Errorf("hit file %s is empty", fileHeader.Filename)
		return nil, errors.New("hit file is empty")
	}
	if err := validateFileType(fileHeader); err != nil {
		return nil, err
	}
	return fileHeader, nil
}
