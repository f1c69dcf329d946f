package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readList reads one path per line from a -L listing file, skipping
// blank lines.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading list %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// parseCompressionToken splits a CLI `ALG[=LEVEL]` token. A
// non-numeric level is a CLI-level error; a missing level yields 0,
// the codec-default sentinel.
func parseCompressionToken(token string) (alg string, level int, err error) {
	alg, levelStr, found := strings.Cut(token, "=")
	if !found {
		return alg, 0, nil
	}
	level, err = strconv.Atoi(levelStr)
	if err != nil || level < 0 {
		return "", 0, fmt.Errorf("invalid compression level %q", levelStr)
	}
	return alg, level, nil
}
