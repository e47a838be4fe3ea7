// This file implements the persistence conveniences on Runner: saving the
// request for the next session and exporting results, both through the
// codec configured on the runner.

package mixgo

import (
	"context"
	"time"

	"github.com/formlab/mixgo/blobstore"
	"github.com/formlab/mixgo/export"
	"github.com/formlab/mixgo/setup"
)

// SaveSetup persists the runner's request through the configured codec, so
// an application can restore its form state on the next start with
// setup.New(blobs).Load.
func (r *Runner) SaveSetup(ctx context.Context, blobs blobstore.Store) error {
	store := setup.New(blobs, func(o *setup.Options) { o.Codec = r.opts.Codec })
	return store.Save(ctx, r.req)
}

// Export serializes a result produced by this runner into a blob. When the
// export options carry no codec, the runner's configured codec is used.
// The export is recorded on the runner's metrics collector and logger.
func (r *Runner) Export(ctx context.Context, blobs blobstore.Store, name string, opts export.Options, res *Result) (int, error) {
	if opts.Codec == nil {
		opts.Codec = r.opts.Codec
	}

	start := time.Now()
	n, err := export.ToStore(ctx, blobs, name, opts, res.Names, res.Rows.All())
	r.opts.Metrics.RecordExport(time.Since(start), n, err)
	r.opts.Logger.LogExport(ctx, name, n, err)
	return n, err
}
