package xio

import (
	"context"
	"errors"
	"io"
)

var ErrTooLarge = errors.New("content exceeds size limit")

type readerFunc func(p []byte) (n int, err error)

func (rf readerFunc) Read(p []byte) (n int, err error) { return rf(p) }

// Copy is io.Copy that stops with ctx.Err() once ctx is done.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, readerFunc(func(p []byte) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
			return src.Read(p)
		}
	}))
}

// CopyN copies at most limit bytes, failing with ErrTooLarge when src holds
// more.
func CopyN(ctx context.Context, dst io.Writer, src io.Reader, limit int64) (int64, error) {
	n, err := Copy(ctx, dst, io.LimitReader(src, limit+1))
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, ErrTooLarge
	}
	return n, nil
}
