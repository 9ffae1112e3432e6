package media

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// pdf renders the first page with pdftoppm.
func (g *Generator) pdf(ctx context.Context, src string) (string, error) {
	prefix, err := g.tempFile("")
	if err != nil {
		return "", err
	}

	// pdftoppm appends the extension itself.
	_ = os.Remove(prefix)

	err = run(ctx, toolOr(g.PDFToPPM, defaultPDFToPPM),
		"-jpeg", "-singlefile", "-f", "1", "-l", "1",
		"-scale-to", strconv.Itoa(g.size()),
		src, prefix)
	if err != nil {
		return "", err
	}

	return prefix + ".jpg", nil
}

// mobi extracts the cover with ebook-meta and resizes it.
func (g *Generator) mobi(ctx context.Context, src string) (string, error) {
	cover, err := g.tempFile(".jpg")
	if err != nil {
		return "", err
	}
	defer os.Remove(cover)

	err = run(ctx, toolOr(g.EbookMeta, defaultEbookMeta), src, "--get-cover="+cover)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(cover)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: no cover in %s", ErrUnsupportedMediaType, filepath.Base(src))
	}

	return g.raster(cover, ".jpg")
}

// epub reads the cover image named by the package document and resizes it.
func (g *Generator) epub(src string) (string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("%w: open epub: %w", ErrUnsupportedMediaType, err)
	}
	defer zr.Close()

	coverPath, mediaType, err := epubCoverPath(&zr.Reader)
	if err != nil {
		return "", err
	}

	ext := ExtensionFor(mediaType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(coverPath))
	}

	extracted, err := g.tempFile(ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(extracted)

	err = extractZipEntry(&zr.Reader, coverPath, extracted)
	if err != nil {
		return "", err
	}

	if ext == ".png" {
		return g.raster(extracted, ".png")
	}

	return g.raster(extracted, ".jpg")
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metas []struct {
		Name    string `xml:"name,attr"`
		Content string `xml:"content,attr"`
	} `xml:"metadata>meta"`
	Items []struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		MediaType  string `xml:"media-type,attr"`
		Properties string `xml:"properties,attr"`
	} `xml:"manifest>item"`
}

// epubCoverPath finds the cover image: EPUB 3 "cover-image" property first,
// then the EPUB 2 <meta name="cover">, then any image item named like a cover.
func epubCoverPath(zr *zip.Reader) (string, string, error) {
	var container epubContainer

	err := readZipXML(zr, "META-INF/container.xml", &container)
	if err != nil {
		return "", "", err
	}

	if len(container.Rootfiles) == 0 {
		return "", "", fmt.Errorf("%w: epub has no package document", ErrUnsupportedMediaType)
	}

	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage

	err = readZipXML(zr, opfPath, &pkg)
	if err != nil {
		return "", "", err
	}

	var coverID string

	for _, m := range pkg.Metas {
		if m.Name == "cover" {
			coverID = m.Content
		}
	}

	pick := -1

	for i, item := range pkg.Items {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}

		switch {
		case strings.Contains(item.Properties, "cover-image"):
			pick = i
		case coverID != "" && item.ID == coverID && pick < 0:
			pick = i
		case pick < 0 && strings.Contains(strings.ToLower(item.ID+item.Href), "cover"):
			pick = i
		}
	}

	if pick < 0 {
		return "", "", fmt.Errorf("%w: epub has no cover image", ErrUnsupportedMediaType)
	}

	href, err := url.PathUnescape(pkg.Items[pick].Href)
	if err != nil {
		href = pkg.Items[pick].Href
	}

	return path.Join(path.Dir(opfPath), href), pkg.Items[pick].MediaType, nil
}

func readZipXML(zr *zip.Reader, name string, v any) error {
	var buf bytes.Buffer

	err := copyZipEntry(zr, name, &buf)
	if err != nil {
		return err
	}

	err = xml.Unmarshal(buf.Bytes(), v)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrUnsupportedMediaType, name, err)
	}

	return nil
}

func extractZipEntry(zr *zip.Reader, name, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	err = copyZipEntry(zr, name, f)
	if err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

func copyZipEntry(zr *zip.Reader, name string, w io.Writer) error {
	rc, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("%w: epub entry %s: %w", ErrUnsupportedMediaType, name, err)
	}
	defer rc.Close()

	_, err = io.Copy(w, rc)

	return err
}

func toolOr(tool, fallback string) string {
	if tool == "" {
		return fallback
	}

	return tool
}

// run executes an external renderer. A missing binary makes the content
// unsupported rather than failing hard.
func run(ctx context.Context, tool string, args ...string) error {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s is not installed", ErrUnsupportedMediaType, tool)
	}

	return fmt.Errorf("%s: %w: %s", tool, err, strings.TrimSpace(stderr.String()))
}
