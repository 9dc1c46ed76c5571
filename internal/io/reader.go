package io

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/williampepple1/vibe-scout/internal/config"
)

// ErrNoLocations is returned when neither an input file nor arguments name a location
var ErrNoLocations = errors.New("no location URLs given")

// URLReader reads location URLs from the configured input file or the command line
type URLReader struct {
	Config *config.IOConfig
}

// NewURLReader creates a new URL reader
func NewURLReader(config *config.IOConfig) *URLReader {
	return &URLReader{
		Config: config,
	}
}

// ReadFromFile reads URLs from a file, one URL per line.
// Blank lines and lines starting with # are skipped.
func (r *URLReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url != "" && !strings.HasPrefix(url, "#") {
			urls = append(urls, url)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

// GetURLs returns URLs from the input file when one is configured,
// otherwise the given positional arguments
func (r *URLReader) GetURLs(args []string) ([]string, error) {
	var urls []string
	if r.Config.InputFile != "" {
		var err error
		urls, err = r.ReadFromFile(r.Config.InputFile)
		if err != nil {
			return nil, err
		}
	} else {
		for _, a := range args {
			if a = strings.TrimSpace(a); a != "" {
				urls = append(urls, a)
			}
		}
	}

	if len(urls) == 0 {
		return nil, ErrNoLocations
	}
	return urls, nil
}
