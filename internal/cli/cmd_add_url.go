package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/calvinalkan/docstore/internal/docstore"
)

var errURLRequired = errors.New("url is required")

// AddURLCmd returns the add-url command.
func AddURLCmd(a *app) *Command {
	fs := addFlags("add-url")

	return &Command{
		Flags: fs,
		Usage: "add-url <url> [flags]",
		Short: "Download a file and store it, prints its ID",
		Long: `Download a file over HTTP(S) and store it like "add".

The filename comes from the Content-Disposition header, falling back to the
last path segment of the URL. --source-url defaults to <url>.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errURLRequired
			}

			tmpDir, err := os.MkdirTemp("", "docstore-download-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmpDir)

			downloaded, err := download(ctx, http.DefaultClient, args[0], tmpDir)
			if err != nil {
				return err
			}

			nd := docstore.NewDocument{Path: downloaded, SourceURL: args[0]}

			return execAdd(ctx, o, a, fs, nd)
		},
	}
}

// download fetches rawURL into dir and returns the written path.
func download(ctx context.Context, client *http.Client, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %s", rawURL, resp.Status)
	}

	dst := filepath.Join(dir, downloadName(resp.Header.Get("Content-Disposition"), u))

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	_, err = io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}

	return dst, nil
}

func downloadName(disposition string, u *url.URL) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			if name := filepath.Base(params["filename"]); usableName(name) {
				return name
			}
		}
	}

	if name := path.Base(u.Path); usableName(name) {
		return name
	}

	return "download"
}

// usableName rejects names that do not denote a file inside the download dir.
func usableName(name string) bool {
	switch name {
	case "", ".", "..", "/":
		return false
	}

	return true
}
