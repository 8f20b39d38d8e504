package body

import (
	"io"
	"os"
)

// FileRegion references (file, offset, count) for zero-copy response
// bodies. It implements io.WriterTo so that io.Copy(conn, region) lets the
// standard library's net.TCPConn fast path (splice/sendfile) take over
// when the destination implements io.ReaderFrom; otherwise WriteTo falls
// back to an explicit read loop.
type FileRegion struct {
	File   *os.File
	Offset int64
	Count  int64
}

// WriteTo streams Count bytes of File starting at Offset into w. It seeks
// File to Offset and copies through an io.LimitedReader over the file,
// the form the net package hands to sendfile. Read failures mid-stream are
// reported verbatim; short files are reported as io.ErrUnexpectedEOF.
func (f FileRegion) WriteTo(w io.Writer) (int64, error) {
	if _, err := f.File.Seek(f.Offset, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, io.LimitReader(f.File, f.Count))
	if err == nil && n < f.Count {
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}

// Subscribe implements Publisher[Chunk] by reading the region through a
// buffered loop, for callers that need backpressured delivery instead of
// a direct WriteTo fast path (e.g. when the engine must interleave the
// region with other pending writes).
func (f FileRegion) Subscribe(s Subscriber[Chunk]) error {
	sr := io.NewSectionReader(f.File, f.Offset, f.Count)
	rc := io.NopCloser(sr)
	return NewReaderBody(rc, 0).Subscribe(s)
}
