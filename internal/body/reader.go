package body

import (
	"io"
)

// ReaderBody adapts an io.ReadCloser (fixed/chunked/close-delimited — see
// internal/httpx.NewBodyReader) into a demand-driven Publisher[Chunk].
// Production is synchronous: a Request(n) call reads up to n chunks of
// bufSize bytes each directly on the caller's goroutine before returning,
// matching the single-threaded event-loop model — there is no background
// goroutine to coordinate with.
type ReaderBody struct {
	r          io.ReadCloser
	bufSize    int
	subscribed bool
	cancelled  bool
	done       bool
}

// NewReaderBody wraps r. bufSize controls the chunk granularity handed to
// OnNext; it defaults to 32KiB when <= 0.
func NewReaderBody(r io.ReadCloser, bufSize int) *ReaderBody {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	return &ReaderBody{r: r, bufSize: bufSize}
}

func (b *ReaderBody) Subscribe(s Subscriber[Chunk]) error {
	if b.subscribed {
		return ErrAlreadySubscribed
	}
	b.subscribed = true
	s.OnSubscribe(&readerDemand{body: b, sub: s})
	return nil
}

type readerDemand struct {
	body *ReaderBody
	sub  Subscriber[Chunk]
}

func (d *readerDemand) Request(n int64) {
	b := d.body
	if b.cancelled || b.done {
		return
	}
	for i := int64(0); i < n && !b.cancelled && !b.done; i++ {
		buf := make([]byte, b.bufSize)
		rn, err := b.r.Read(buf)
		if rn > 0 {
			data := buf[:rn]
			d.sub.OnNext(Chunk{Data: data, release: func() {}})
		}
		if err != nil {
			b.done = true
			_ = b.r.Close()
			if err == io.EOF {
				d.sub.OnComplete()
			} else {
				d.sub.OnError(err)
			}
			return
		}
	}
}

func (d *readerDemand) Cancel() {
	b := d.body
	if b.cancelled || b.done {
		return
	}
	b.cancelled = true
	_ = b.r.Close()
}
