package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

type workspace struct {
	uploadDir string
	outputDir string
	create    func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) { return os.Create(path) }

// NewWorkspace создаёт uploads/ и outputs/, если их ещё нет.
func NewWorkspace(uploadDir, outputDir string) (ports.Workspace, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &workspace{uploadDir: uploadDir, outputDir: outputDir, create: createFile}, nil
}

// SaveUpload кладёт файл под исходным именем; одноимённый файл перезаписывается.
func (w *workspace) SaveUpload(ctx context.Context, filename string, r io.Reader) (ports.UploadedFile, error) {
	name, err := cleanName(filename)
	if err != nil {
		return ports.UploadedFile{}, err
	}
	path := filepath.Join(w.uploadDir, name)

	out, err := w.create(path)
	if err != nil {
		return ports.UploadedFile{}, fmt.Errorf("create upload: %w", err)
	}

	n, err := io.Copy(out, readerWithContext(ctx, r))
	if err != nil {
		out.Close()
		_ = os.Remove(path)
		return ports.UploadedFile{}, fmt.Errorf("write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return ports.UploadedFile{}, fmt.Errorf("close upload: %w", err)
	}

	return ports.UploadedFile{
		Name: name,
		Ext:  ports.ExtOf(name),
		Path: path,
		Size: n,
	}, nil
}

func (w *workspace) OutputDir() string { return w.outputDir }

// OpenOutput открывает только плоские имена внутри outputs/.
func (w *workspace) OpenOutput(name string) (*os.File, error) {
	clean, err := cleanName(name)
	if err != nil || clean != name {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(w.outputDir, clean))
}

func cleanName(filename string) (string, error) {
	// браузеры на Windows иногда присылают полный путь
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	return name, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
