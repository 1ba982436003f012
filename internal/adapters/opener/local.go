package opener

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/ports"
)

// LocalOpener reads datasets and the income table from the filesystem.
// Dev-mode counterpart of the S3 opener.
type LocalOpener struct{}

func NewLocalOpener() *LocalOpener { return &LocalOpener{} }

func (l *LocalOpener) Open(_ context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	log.Printf("[OPENER][FILE][START] path=%q", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Printf("[OPENER][FILE][ERR] open: %v", err)
		return nil, ports.Meta{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ports.Meta{}, err
	}
	log.Printf("[OPENER][FILE][OK] size=%d", st.Size())
	return f, ports.Meta{
		Source: "file",
		Size:   st.Size(),
		Key:    filePath,
	}, nil
}
