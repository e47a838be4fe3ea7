package export

import (
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/formlab/mixgo/blobstore"
)

// ToStore serializes the rows into a blob. The blob becomes visible under
// its name only after the export completed, so a failed export never
// leaves a partial file behind.
func ToStore(ctx context.Context, store blobstore.Store, name string, opts Options, names []string, rows iter.Seq[[]float64]) (int, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	n, err := Write(w, opts, names, rows)
	if err != nil {
		w.Abort()
		return n, err
	}
	return n, w.Close()
}

// Bundle exports the same rows in several formats concurrently, one blob
// per format, named baseName plus the format extension. The first failure
// cancels the remaining exports.
//
// rows is iterated once per format, concurrently, so it must be re-iterable
// and side-effect free. engine.ResultSet.All satisfies this; a one-shot or
// stateful sequence does not.
func Bundle(ctx context.Context, store blobstore.Store, baseName string, formats []Options, names []string, rows iter.Seq[[]float64]) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, opts := range formats {
		g.Go(func() error {
			blobName := fmt.Sprintf("%s.%s", baseName, opts.Ext())
			if _, err := ToStore(ctx, store, blobName, opts, names, rows); err != nil {
				return fmt.Errorf("export %s: %w", blobName, err)
			}
			return nil
		})
	}
	return g.Wait()
}
