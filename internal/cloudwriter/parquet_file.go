package cloudwriter

import (
	"errors"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// ParquetFile adapts a CloudWriter to parquet-go's write-only file source.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

var _ source.ParquetFile = (*ParquetFile)(nil)

func NewParquetFile(w CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: w}
}

// Open and Create return the receiver; the object comes into being on upload.
func (c *ParquetFile) Open(string) (source.ParquetFile, error)   { return c, nil }
func (c *ParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, errors.New("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *ParquetFile) Read([]byte) (int, error) {
	return 0, errors.New("read not supported for cloud storage")
}

func (c *ParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *ParquetFile) Close() error {
	return c.cloudWriter.Close()
}
