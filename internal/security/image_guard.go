package security

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ImageURLGuard は記事のアイキャッチ画像URLを検証する。
// 静的検証（スキーム・ホスト・IP範囲）に加え、有効な場合はSSRF防止付きクライアントで
// 実際にHEADリクエストを送り、画像が取得可能であることを確認する。
type ImageURLGuard struct {
	client *http.Client
	probe  bool
}

// blockedPrefixes は画像URLとして受け付けないネットワーク範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"), // メタデータIPを含む
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// NewImageURLGuard はImageURLGuardを生成する。
// probeがtrueの場合、ValidateはsafeurlクライアントでURLの到達性も確認する。
func NewImageURLGuard(probe bool, timeout time.Duration) *ImageURLGuard {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return &ImageURLGuard{
		client: safeurl.Client(config).Client,
		probe:  probe,
	}
}

// Validate は画像URLを検証する。問題がある場合は理由を含むエラーを返す。
func (g *ImageURLGuard) Validate(ctx context.Context, rawURL string) error {
	if err := CheckURL(rawURL); err != nil {
		return err
	}
	if !g.probe {
		return nil
	}
	return g.head(ctx, rawURL)
}

// head はHEADリクエストで画像の到達性とContent-Typeを確認する。
func (g *ImageURLGuard) head(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid image request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("image not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("image returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("not an image: %s", ct)
	}
	return nil
}

// CheckURL はDNS解決を伴わない静的なURL検証を行う。
// http/httpsのみ許可し、localhostとプライベート・ループバック・リンクローカルのIPを拒否する。
func CheckURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		for _, p := range blockedPrefixes {
			if p.Contains(addr) {
				return fmt.Errorf("blocked IP address: %s", addr)
			}
		}
	}
	return nil
}
