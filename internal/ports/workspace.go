package ports

import (
	"context"
	"io"
	"os"
)

// Workspace — локальные каталоги uploads/ и outputs/.
type Workspace interface {
	SaveUpload(ctx context.Context, filename string, r io.Reader) (UploadedFile, error)
	OutputDir() string
	OpenOutput(name string) (*os.File, error)
}
