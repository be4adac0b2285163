package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency caps parallel downloads so a slow hub cannot pin the
// process on dozens of open transfers.
const fetchConcurrency = 3

// minFreeBytes is the disk headroom required before any download starts.
// Quantized model bundles run to hundreds of megabytes.
const minFreeBytes = 1 << 30

// progressStep controls download progress logging granularity.
const progressStep = 0.25

// Bundle describes one engine's model assets relative to the model
// directory.
type Bundle struct {
	// Name identifies the bundle in logs and errors, e.g. "nmt-int8".
	Name string

	// Files are the asset file names the engine reads.
	Files []string

	// Checksums optionally maps file name to expected hex SHA-256. Files
	// without an entry are accepted on size alone.
	Checksums map[string]string
}

// Missing returns the bundle files absent from dir.
func (b Bundle) Missing(dir string) []string {
	var missing []string
	for _, name := range b.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Provisioner downloads missing bundle files from a model hub.
type Provisioner struct {
	// Dir is the model directory. Created if absent.
	Dir string

	// BaseURL is the hub root; files are fetched from BaseURL/<bundle>/<file>.
	// Empty means downloads are disabled and missing files are a hard error.
	BaseURL string

	// Client is the HTTP client for fetches. Defaults to a client with a
	// 10 minute overall timeout.
	Client *http.Client
}

// Ensure makes every file of b present in the provisioner's directory,
// downloading what is missing, a few files at a time. It returns nil when
// the bundle is already complete.
func (p *Provisioner) Ensure(ctx context.Context, b Bundle) error {
	missing := b.Missing(p.Dir)
	if len(missing) == 0 {
		slog.Debug("model bundle present", "bundle", b.Name, "dir", p.Dir)
		return nil
	}

	if p.BaseURL == "" {
		return fmt.Errorf(
			"assets: model bundle %q is incomplete in %s (missing %s); "+
				"install the files manually or configure a model hub URL",
			b.Name, p.Dir, strings.Join(missing, ", "))
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("assets: create model directory %s: %w", p.Dir, err)
	}
	if err := p.preflight(); err != nil {
		return err
	}

	slog.Info("provisioning model bundle",
		"bundle", b.Name, "dir", p.Dir, "missing", len(missing))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, name := range missing {
		g.Go(func() error { return p.fetch(ctx, b, name) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("model bundle provisioned", "bundle", b.Name, "files", len(b.Files))
	return nil
}

// preflight rejects a download onto a nearly full disk with an actionable
// error instead of a partial write mid-transfer.
func (p *Provisioner) preflight() error {
	usage, err := disk.Usage(p.Dir)
	if err != nil {
		// Preflight is advisory; the fetch itself still fails cleanly.
		slog.Warn("disk usage preflight unavailable", "dir", p.Dir, "err", err)
		return nil
	}
	if usage.Free < minFreeBytes {
		return fmt.Errorf(
			"assets: insufficient disk space in %s: %d MiB free, need at least %d MiB; "+
				"free up space or point %s at another volume",
			p.Dir, usage.Free>>20, int64(minFreeBytes)>>20, modelDirEnv)
	}
	return nil
}

// fetch downloads one file to a temporary sibling and renames it into place
// so a crashed download never leaves a truncated asset behind.
func (p *Provisioner) fetch(ctx context.Context, b Bundle, name string) error {
	src, err := url.JoinPath(p.BaseURL, b.Name, name)
	if err != nil {
		return fmt.Errorf("assets: build download URL for %s: %w", name, err)
	}
	dest := filepath.Join(p.Dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("assets: request %s: %w", src, err)
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("assets: download %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assets: download %s: unexpected status %s", src, resp.Status)
	}

	tmp, err := os.CreateTemp(p.Dir, name+".partial-*")
	if err != nil {
		return fmt.Errorf("assets: create temp file in %s: %w", p.Dir, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	pw := &progressWriter{name: name, total: resp.ContentLength}
	if _, err := io.Copy(io.MultiWriter(tmp, hash, pw), resp.Body); err != nil {
		return fmt.Errorf("assets: download %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("assets: flush %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assets: close %s: %w", tmp.Name(), err)
	}

	if want, ok := b.Checksums[name]; ok {
		got := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(got, want) {
			return fmt.Errorf(
				"assets: checksum mismatch for %s: got %s, want %s; "+
					"the download is corrupt, delete it and retry", name, got, want)
		}
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("assets: move %s into place: %w", name, err)
	}
	slog.Info("model asset downloaded", "bundle", b.Name, "file", name)
	return nil
}

func (p *Provisioner) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Minute}
}

// progressWriter logs download progress at fixed fractions of the total, or
// every 64 MiB when the size is unknown.
type progressWriter struct {
	name    string
	total   int64
	written int64
	next    float64
	step64  int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.total > 0 {
		frac := float64(w.written) / float64(w.total)
		for frac >= w.next+progressStep {
			w.next += progressStep
			slog.Info("downloading model asset",
				"file", w.name, "percent", int(w.next*100))
		}
		return len(p), nil
	}
	if w.written>>26 > w.step64 {
		w.step64 = w.written >> 26
		slog.Info("downloading model asset",
			"file", w.name, "mib", w.written>>20)
	}
	return len(p), nil
}
