package common

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// NewLogger returns the JSON logger every command writes to stderr.
func NewLogger(quiet, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case quiet:
		logLevel = slog.LevelError
	case verbose:
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// ParseReidList turns a --poi value into a list of reids. The value is either
// a comma-separated list of numbers or the path of a file with one reid per
// line. Blank entries are dropped and duplicates keep their first position.
func ParseReidList(poi string) ([]string, error) {
	poi = strings.TrimSpace(poi)
	if poi == "" {
		return nil, nil
	}

	if _, err := strconv.ParseInt(strings.TrimSpace(strings.SplitN(poi, ",", 2)[0]), 10, 64); err == nil {
		return validReids(strings.Split(poi, ","))
	}

	f, err := os.Open(poi)
	if err != nil {
		return nil, fmt.Errorf("failed to open reid list: %w", err)
	}
	defer f.Close()
	return ReadReids(f)
}

// ReadReids reads one reid per line.
func ReadReids(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reid list: %w", err)
	}
	return validReids(lines)
}

func validReids(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	var reids []string
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		if _, err := strconv.ParseInt(r, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid reid %q", r)
		}
		seen[r] = true
		reids = append(reids, r)
	}
	return reids, nil
}
