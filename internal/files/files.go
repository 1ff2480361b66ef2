// Package files prepares message attachments: it fetches local or remote
// inputs, sniffs their MIME type, and assigns an upload name.
package files

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Input names one attachment source: a local path or a remote URL.
type Input struct {
	path string
	url  string
}

// Local creates an input backed by a file on disk.
func Local(path string) Input { return Input{path: path} }

// Remote creates an input fetched over HTTP.
func Remote(url string) Input { return Input{url: url} }

// File is one prepared attachment.
type File struct {
	Data []byte
	Name string
	MIME string
}

// Size returns the payload size in bytes.
func (f File) Size() int { return len(f.Data) }

// Prepare resolves every input into its bytes, name, and sniffed MIME type.
// Remote inputs are fetched with hc.
func Prepare(ctx context.Context, hc *http.Client, inputs []Input) ([]File, error) {
	out := make([]File, 0, len(inputs))
	for _, in := range inputs {
		var (
			data []byte
			ext  string
			err  error
		)
		switch {
		case in.url != "":
			data, err = fetch(ctx, hc, in.url)
			if err != nil {
				return nil, err
			}
		default:
			data, err = os.ReadFile(in.path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", in.path, err)
			}
			ext = filepath.Ext(in.path)
		}

		mtype := mimetype.Detect(data)
		if ext == "" {
			ext = mtype.Extension()
		}
		if ext == "" {
			ext = ".txt"
		}
		out = append(out, File{
			Data: data,
			Name: randomName(8) + ext,
			MIME: mtype.String(),
		})
	}
	return out, nil
}

func fetch(ctx context.Context, hc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

const nameCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomName(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(nameCharset[rand.Intn(len(nameCharset))])
	}
	return b.String()
}
