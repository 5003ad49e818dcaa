package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/finance-sync/internal/errs"
)

// watchQuery streams the full result set of q every time it changes. Each
// value on the first channel is a complete replacement, never a delta. The
// error channel receives at most one error, after which both channels close.
// Cancelling ctx closes both channels without an error.
func watchQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) (<-chan []T, <-chan error) {
	out := make(chan []T)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		it := q.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done {
					return
				}
				errCh <- errs.FromStatus("listen", "query subscription failed", err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				errCh <- errs.FromStatus("listen", "failed to read query snapshot", err)
				return
			}

			items := make([]T, 0, len(docs))
			for _, d := range docs {
				item, err := decode(d)
				if err != nil {
					errCh <- errs.NewRemoteOperationError(errs.KindUnknown, "listen", "failed to parse document "+d.Ref.ID, err)
					return
				}
				items = append(items, item)
			}

			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}

// watchDoc streams a single document. A missing document is delivered as nil.
func watchDoc[T any](ctx context.Context, ref *firestore.DocumentRef, decode func(*firestore.DocumentSnapshot) (*T, error)) (<-chan *T, <-chan error) {
	out := make(chan *T)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		it := ref.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done {
					return
				}
				errCh <- errs.FromStatus("listen", "document subscription failed", err)
				return
			}

			var item *T
			if snap.Exists() {
				item, err = decode(snap)
				if err != nil {
					errCh <- errs.NewRemoteOperationError(errs.KindUnknown, "listen", "failed to parse document "+ref.ID, err)
					return
				}
			}

			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}
