package location

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/fakeyudi/stride/internal/geo"
)

// Reader reads samples from an io.Reader until EOF.
type Reader struct {
	r   io.Reader
	now func() time.Time
}

// NewReader returns a Source over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, now: time.Now}
}

func (r *Reader) Samples(ctx context.Context) (<-chan geo.Coordinate, <-chan error) {
	em := newEmitter(r.now)
	go func() {
		defer em.close()
		scanner := bufio.NewScanner(r.r)
		for scanner.Scan() {
			if !em.emit(ctx, scanner.Text()) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			em.fail(ctx, err)
		}
	}()
	return em.out, em.errs
}
