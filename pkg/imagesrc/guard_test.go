package imagesrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

func TestIsPublicAddr(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":            true,
		"151.101.1.69":       true,
		"2606:4700::1111":    true,
		"127.0.0.1":          false,
		"::1":                false,
		"10.1.2.3":           false,
		"172.16.0.1":         false,
		"192.168.1.10":       false,
		"169.254.169.254":    false,
		"100.64.0.1":         false,
		"0.0.0.0":            false,
		"fe80::1":            false,
		"fd00::1":            false,
		"::ffff:127.0.0.1":   false,
		"::ffff:192.168.0.1": false,
		"224.0.0.1":          false,
	}
	for s, want := range cases {
		if got := IsPublicAddr(netip.MustParseAddr(s)); got != want {
			t.Errorf("IsPublicAddr(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestPublicOnlyRefusesLoopback(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write(testPNG(t, 2, 2))
	}))
	defer srv.Close()

	_, err := NewLoader(time.Second, 0).PublicOnly().Load(context.Background(), srv.URL+"/admin")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Fatalf("expected ErrBlockedAddress, got %v", err)
	}
	var le *ImageLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *ImageLoadError, got %T", err)
	}
	if hit {
		t.Fatal("loopback server was contacted")
	}
}
