package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// FetchURL downloads the body at url, trying up to retries times
// on network errors and non 200 responses.
func FetchURL(ctx context.Context, client *http.Client, url string, retries int) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = &StatusError{URL: url, StatusCode: resp.StatusCode}
			continue
		}

		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// StatusError is returned by FetchURL when the last attempt got a non 200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: bad status code: %d", e.URL, e.StatusCode)
}

// BuildTileURL fills in a template URL of something like http://{s}.host.com/{z}/{x}/{y}.png
// The subdomain is picked from the list based on the tile so requests spread
// over the hosts but the same tile always maps to the same URL.
func BuildTileURL(template string, x, y, z uint64, subdomains ...string) string {
	s := ""
	if len(subdomains) > 0 {
		s = subdomains[(x+y)%uint64(len(subdomains))]
	}

	r := strings.NewReplacer(
		"{s}", s,
		"{x}", strconv.FormatUint(x, 10),
		"{y}", strconv.FormatUint(y, 10),
		"{z}", strconv.FormatUint(z, 10),
		"{zoom}", strconv.FormatUint(z, 10),
	)
	return r.Replace(template)
}
