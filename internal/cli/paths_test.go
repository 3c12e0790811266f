package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/attacktree/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"HomeDefault", "", filepath.Join(home, ".cache", "attacktree")},
		{"XDGCacheHome", xdg, filepath.Join(xdg, "attacktree")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", home)
			t.Setenv("XDG_CACHE_HOME", tt.xdg)

			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := &CLI{Logger: log.New(io.Discard)}

	t.Run("NoCache", func(t *testing.T) {
		got, err := c.newCache(ctx, cacheFlags{noCache: true})
		if err != nil {
			t.Fatal(err)
		}
		nc, ok := got.(*cache.NullCache)
		if !ok || nc.Reason != "--no-cache" {
			t.Errorf("newCache = %#v, want NullCache disabled by --no-cache", got)
		}
	})

	t.Run("FileCacheUnderXDG", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)

		got, err := c.newCache(ctx, cacheFlags{})
		if err != nil {
			t.Fatal(err)
		}
		defer got.Close()
		fc, ok := got.(*cache.FileCache)
		if !ok {
			t.Fatalf("newCache = %T, want *cache.FileCache", got)
		}
		if want := filepath.Join(xdg, appName); fc.Dir() != want {
			t.Errorf("Dir() = %q, want %q", fc.Dir(), want)
		}
	})

	t.Run("NoHomeFallsBack", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		t.Setenv("HOME", "")

		got, err := c.newCache(ctx, cacheFlags{})
		if err != nil {
			t.Fatal(err)
		}
		if nc, ok := got.(*cache.NullCache); !ok || nc.Reason == "" {
			t.Errorf("newCache = %#v, want NullCache with a reason", got)
		}
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		got, err := c.newCache(ctx, cacheFlags{redisURL: "redis://" + mr.Addr()})
		if err != nil {
			t.Fatal(err)
		}
		defer got.Close()
		if _, ok := got.(*cache.RedisCache); !ok {
			t.Errorf("newCache = %T, want *cache.RedisCache", got)
		}
	})

	t.Run("RedisDown", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := c.newCache(ctx, cacheFlags{redisURL: "redis://" + addr})
		if err == nil || !strings.Contains(err.Error(), "open redis cache") {
			t.Errorf("err = %v, want an open redis cache error", err)
		}
	})
}
