package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/pkg/logger"
)

// ErrFirstPage is returned when the very first page cannot be fetched.
var ErrFirstPage = errors.New("first page fetch failed")

// Fetcher returns one page of fragments. Pages are numbered from 1.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, page int) (Page, error)

// FetchPage implements Fetcher.
func (f FetcherFunc) FetchPage(ctx context.Context, page int) (Page, error) { return f(ctx, page) }

// Result is what a collection run produced.
type Result struct {
	Fragments []model.CandidateFragment
	Pages     int
	State     State
	Reason    string
}

// Collect requests pages until the controller stops. Fragments of the
// terminating page are kept. A failure on page 1 is returned; later failures
// end collection with what was gathered so far.
func Collect(ctx context.Context, ctrl *Controller, f Fetcher, log logger.Logger) (Result, error) {
	log = logger.OrNop(log)
	var res Result
	for !ctrl.Done() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := ctrl.Page()
		page, err := f.FetchPage(ctx, n)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			if n == 1 {
				return res, fmt.Errorf("%w: %w", ErrFirstPage, err)
			}
			log.Warn(ctx, "page fetch failed, keeping collected fragments",
				logger.Int("page", n),
				logger.Int("fragments", len(res.Fragments)),
				logger.Error(err),
			)
			ctrl.Fail()
			break
		}
		res.Pages++
		res.Fragments = append(res.Fragments, page.Fragments...)
		state := ctrl.Observe(page)
		log.Debug(ctx, "page observed",
			logger.Int("page", n),
			logger.Int("fragments", len(page.Fragments)),
			logger.String("state", state.String()),
		)
	}
	res.State = ctrl.State()
	res.Reason = ctrl.Reason()
	return res, nil
}
