// Package images resolves article image URLs to their highest available
// resolution, fetches them within strict bounds, and transcodes
// everything into JPEG so the assembled document carries one encoding.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// Quality tiers: standard article images, the full-resolution cover
	// page, and the width-capped metadata cover.
	imageQuality     = 95
	coverQuality     = 100
	coverMetaQuality = 90

	// High-resolution rewrite parameters for the site's image proxy.
	highResWidth   = 1424
	highResQuality = 80

	coverWidth    = 800
	coverHeight   = 1200
	coverMaxWidth = 800

	// maxImageBytes aborts any download that exceeds it.
	maxImageBytes = 10 << 20
)

// Schemes rejected outright. Broader than the extractor's list: file and
// ftp fetches would be SSRF vectors here.
var unsafeSchemes = []string{"javascript:", "data:", "vbscript:", "file:", "ftp:"}

var contentAssetRe = regexp.MustCompile(`/content-assets/.*?\.(jpg|jpeg|png)`)

// Handler fetches and transcodes images. The added counter names output
// files sequentially across the run.
type Handler struct {
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
	Timeout    time.Duration

	added int
}

// Added returns how many images have been transcoded so far.
func (h *Handler) Added() int { return h.added }

// ResolveHighRes rebuilds a dynamic image-proxy URL into a canonical
// high-resolution request against the underlying asset. URLs without a
// recognizable proxy pattern pass through unchanged, which also makes
// the function idempotent.
func (h *Handler) ResolveHighRes(imgURL string) string {
	if !strings.Contains(imgURL, "cdn-cgi/image") {
		return imgURL
	}
	asset := contentAssetRe.FindString(imgURL)
	if asset == "" {
		return imgURL
	}
	return fmt.Sprintf("%s/cdn-cgi/image/width=%d,quality=%d,format=auto%s",
		h.base(), highResWidth, highResQuality, asset)
}

// FetchAndTranscode downloads an image and re-encodes it as JPEG at
// standard quality. It returns nil for filtered inputs (bad scheme,
// non-image content, oversize) and for any fetch or decode failure;
// one bad image never aborts a run.
func (h *Handler) FetchAndTranscode(ctx context.Context, imgURL string) []byte {
	if imgURL == "" || hasUnsafeScheme(imgURL) {
		return nil
	}
	imgURL = h.absolute(h.ResolveHighRes(imgURL))

	data, contentType, err := h.get(ctx, imgURL)
	if err != nil {
		log.Debug().Err(err).Str("url", imgURL).Msg("image fetch failed")
		return nil
	}
	if !strings.HasPrefix(contentType, "image/") {
		log.Debug().Str("url", imgURL).Str("contentType", contentType).Msg("skipping non-image content")
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Str("url", imgURL).Msg("image decode failed")
		return nil
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, toRGB(img), &jpeg.Options{Quality: imageQuality}); err != nil {
		return nil
	}
	h.added++
	return out.Bytes()
}

// FetchCover downloads the cover image and returns two encodings: a
// width-capped version for container metadata and the full resolution at
// maximum quality for the dedicated cover page. Unlike article images,
// cover failures are errors; the caller decides on the fallback.
func (h *Handler) FetchCover(ctx context.Context, coverURL string) (meta, full []byte, err error) {
	if strings.TrimSpace(coverURL) == "" || hasUnsafeScheme(coverURL) {
		return nil, nil, fmt.Errorf("invalid cover URL %q", coverURL)
	}
	coverURL = h.absolute(coverURL)

	data, contentType, err := h.get(ctx, coverURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch cover: %w", err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, fmt.Errorf("invalid content type for cover: %s", contentType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode cover: %w", err)
	}
	rgb := toRGB(img)

	var fullBuf bytes.Buffer
	if err := jpeg.Encode(&fullBuf, rgb, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, nil, fmt.Errorf("encode cover: %w", err)
	}

	var metaBuf bytes.Buffer
	if err := jpeg.Encode(&metaBuf, capWidth(rgb, coverMaxWidth), &jpeg.Options{Quality: coverMetaQuality}); err != nil {
		return nil, nil, fmt.Errorf("encode cover: %w", err)
	}
	return metaBuf.Bytes(), fullBuf.Bytes(), nil
}

// DefaultCover returns a solid-color placeholder at the fixed cover
// dimensions, used whenever a real cover cannot be obtained.
func (h *Handler) DefaultCover() []byte {
	img := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xE3, G: 0x12, B: 0x0B, A: 0xFF}), image.Point{}, draw.Src)
	var out bytes.Buffer
	_ = jpeg.Encode(&out, img, &jpeg.Options{Quality: coverMetaQuality})
	return out.Bytes()
}

// get performs one bounded GET and returns body bytes and content type.
func (h *Handler) get(ctx context.Context, imgURL string) ([]byte, string, error) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, "", err
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (h *Handler) base() string {
	if h.BaseURL != "" {
		return strings.TrimSuffix(h.BaseURL, "/")
	}
	return "https://www.economist.com"
}

func (h *Handler) absolute(imgURL string) string {
	if strings.HasPrefix(imgURL, "http") {
		return imgURL
	}
	base, err := url.Parse(h.base())
	if err != nil {
		return imgURL
	}
	ref, err := url.Parse(imgURL)
	if err != nil {
		return imgURL
	}
	return base.ResolveReference(ref).String()
}

// toRGB flattens images that are not already direct RGB or grayscale,
// compositing any transparency onto white.
func toRGB(src image.Image) image.Image {
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.RGBA:
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// capWidth scales the image down proportionally when wider than max.
func capWidth(src image.Image, max int) image.Image {
	b := src.Bounds()
	if b.Dx() <= max {
		return src
	}
	height := b.Dy() * max / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, max, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func hasUnsafeScheme(u string) bool {
	lower := strings.ToLower(u)
	for _, s := range unsafeSchemes {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
