package resultstore

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CompressOlder gzips day stores under root whose date stamp is more than retentionDays
// before now (IST). The current day's store is never touched. An original is removed only
// once its .gz decompresses to the same bytes. It returns the compressed paths and every
// per-file failure joined together.
func CompressOlder(root string, retentionDays int, now time.Time) ([]string, error) {
	if retentionDays <= 0 {
		return nil, nil
	}
	today := Day(now)
	cutoff := Day(now.AddDate(0, 0, -retentionDays))

	var done []string
	var errs []error
	walkErr := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != storeExt {
			return nil
		}
		stamp, ok := storeDay(d.Name())
		if !ok || stamp == today || stamp >= cutoff {
			return nil
		}

		if err := compressStore(p); err != nil {
			errs = append(errs, err)
			return nil
		}
		done = append(done, p+".gz")
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return done, errors.Join(errs...)
}

// compressStore writes p.gz unless an intact copy already exists, then removes p.
func compressStore(p string) error {
	gz := p + ".gz"
	original, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}

	// a .gz left by an interrupted run is trusted only if it holds the whole store
	if existing, err := gunzipFile(gz); err != nil || !bytes.Equal(existing, original) {
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		written, err := gunzipFile(gz)
		if err != nil || !bytes.Equal(written, original) {
			return fmt.Errorf("compress %s: verify %s failed: %v", p, gz, err)
		}
	}

	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove compressed store %s: %w", p, err)
	}
	return nil
}

func gunzipFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

// storeDay extracts the date stamp of any known tag's store file name.
func storeDay(name string) (string, bool) {
	for tag := range knownTags {
		if stamp, _, ok := storeStamp(tag, name); ok {
			return stamp, true
		}
	}
	return "", false
}

// gzipFile compresses src into a temp file beside dst and renames it into place.
func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := out.Name()
	fail := func(err error) error {
		out.Close()
		os.Remove(tmpName)
		return err
	}

	gw := gzip.NewWriter(out)
	gw.Name = strings.TrimSuffix(filepath.Base(dst), ".gz")
	if _, err := io.Copy(gw, in); err != nil {
		return fail(err)
	}
	if err := gw.Close(); err != nil {
		return fail(err)
	}
	if err := out.Sync(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
