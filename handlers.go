package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const HeaderRandSeed = "X-Rand-Seed"

// HitSummary describes an uploaded hit file.
type HitSummary struct {
	Points int     `json:"points"`
	Total  float64 `json:"total"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GenerateHits generates a data set from the request parameters and streams
// it back as csv. Parameters (query or form): seeds, dim, seed, strict.
func GenerateHits(c echo.Context) error {
	// generate context with specific timeout
	ctx, cancel := context.WithTimeout(c.Request().Context(), maxProcessTime)
	defer cancel()

	opts, randSeed, err := parseGenerateParams(c)
	if err != nil {
		logger.Errorf("invalid generate request: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acc, stats, err := GenerateContext(ctx, NewRand(randSeed), opts)
	if err != nil {
		// context timeout and cancel, set status to 504
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Errorf("Processing generate timeout")
			return echo.NewHTTPError(http.StatusGatewayTimeout, "Processing timeout")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	logger.Debugf("generated %d points from %d clusters, rand seed %d", stats.Points, stats.Seeds, randSeed)

	// config stream response header
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv")
	resp.Header().Set(HeaderRandSeed, strconv.FormatUint(randSeed, 10))
	resp.WriteHeader(http.StatusOK)

	// header is committed, status code cannot be changed anymore
	if err = WriteCSV(resp, acc); err != nil {
		logger.Errorf("fail to write csv response: %v", err)
		return err
	}
	return nil
}

func parseGenerateParams(c echo.Context) (Options, uint64, error) {
	opts := Options{Seeds: DefaultSeeds, Dim: DefaultDim}
	var err error

	if s := c.FormValue("seeds"); s != "" {
		if opts.Seeds, err = strconv.Atoi(s); err != nil {
			return opts, 0, fmt.Errorf("seeds %q is not a number", s)
		}
	}
	if opts.Seeds > MaxServeSeeds {
		return opts, 0, fmt.Errorf("seeds must be at most %d", MaxServeSeeds)
	}
	if s := c.FormValue("dim"); s != "" {
		if opts.Dim, err = strconv.Atoi(s); err != nil {
			return opts, 0, fmt.Errorf("dim %q is not a number", s)
		}
	}
	if s := c.FormValue("strict"); s != "" {
		if opts.Strict, err = strconv.ParseBool(s); err != nil {
			return opts, 0, fmt.Errorf("strict %q is not a boolean", s)
		}
	}

	randSeed := uint64(time.Now().UnixNano())
	if s := c.FormValue("seed"); s != "" {
		if randSeed, err = strconv.ParseUint(s, 10, 64); err != nil {
			return opts, 0, fmt.Errorf("seed %q is not an unsigned number", s)
		}
	}
	return opts, randSeed, opts.validate()
}

// SummarizeHits parses an uploaded hit file and reports its point count and
// value range.
func SummarizeHits(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "form parse error: "+err.Error())
	}
	defer form.RemoveAll() // clear tmp file

	fileHeader, err := fetchHitFile(form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// open file stream (not load into memory)
	srcFile, err := fileHeader.Open()
	if err != nil {
		logger.Errorf("failed to open source file: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "fail to open file: "+err.Error())
	}
	defer srcFile.Close()

	acc, err := ReadCSV(srcFile)
	if err != nil {
		logger.Errorf("fail to parse hit file: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, summarize(acc))
}

func summarize(acc Accumulator) HitSummary {
	s := HitSummary{Points: len(acc)}
	if len(acc) == 0 {
		return s
	}
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	for _, v := range acc {
		s.Total += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}
