package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aquarius4k/aquarius/pkg/xio"
	"github.com/mudler/xlog"
)

// maxDownloadSize caps remote images; an 8-bit RGBA 4K frame is ~32MiB.
const maxDownloadSize = 64 << 20

var base64DownloadClient http.Client = http.Client{
	Timeout: 30 * time.Second,
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,`)

// DecodeContent returns the raw bytes behind s, which may be an URL, a data
// URI or bare base64 as found in b64_json API fields.
func DecodeContent(ctx context.Context, s string) ([]byte, error) {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return download(ctx, s)
	}

	payload := s
	if match := dataURIPattern.FindString(s); match != "" {
		xlog.Debug("Found data URI prefix", "prefix", match)
		payload = strings.Replace(s, match, "", 1)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 content: %w", err)
	}
	return data, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := base64DownloadClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := xio.CopyN(ctx, &buf, resp.Body, maxDownloadSize); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	return buf.Bytes(), nil
}
