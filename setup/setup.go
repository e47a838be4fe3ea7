// Package setup persists search requests so an application can restore the
// last-used form state on startup.
//
// Saved setups are self-describing: the blob records the codec name next
// to the payload, so a file written with one codec configuration is still
// readable after the default codec changes.
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/formlab/mixgo/blobstore"
	"github.com/formlab/mixgo/codec"
	"github.com/formlab/mixgo/model"
)

// DefaultName is the blob name used when none is configured.
const DefaultName = "setups/last.json"

// ErrUnknownCodec is returned by Load when the blob names a codec this
// build does not know.
type ErrUnknownCodec struct {
	Codec string
}

func (e *ErrUnknownCodec) Error() string {
	return fmt.Sprintf("setup encoded with unknown codec %q", e.Codec)
}

// Options configures a Store.
type Options struct {
	// Name is the blob name setups are saved under.
	Name string

	// Codec serializes saved setups. Nil means codec.Default.
	Codec codec.Codec
}

// Store saves and restores search requests through a blob store.
type Store struct {
	blobs blobstore.Store
	codec codec.Codec
	name  string
}

// New creates a setup store on top of blobs.
func New(blobs blobstore.Store, optFns ...func(*Options)) *Store {
	opts := Options{Name: DefaultName, Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return &Store{blobs: blobs, codec: opts.Codec, name: opts.Name}
}

type envelope struct {
	Codec   string              `json:"codec"`
	SavedAt time.Time           `json:"savedAt"`
	Request model.SearchRequest `json:"request"`
}

// header is the codec-independent prefix of an envelope. Both built-in
// codecs share the JSON wire format, so the header always decodes with the
// standard library.
type header struct {
	Codec string `json:"codec"`
}

// Save persists the request, replacing any previous setup.
func (s *Store) Save(ctx context.Context, req model.SearchRequest) error {
	data, err := s.codec.Marshal(envelope{
		Codec:   s.codec.Name(),
		SavedAt: time.Now().UTC(),
		Request: req,
	})
	if err != nil {
		return fmt.Errorf("encode setup: %w", err)
	}
	return s.blobs.Put(ctx, s.name, data)
}

// Load restores the last saved request. It returns blobstore.ErrNotFound
// when no setup was ever saved.
func (s *Store) Load(ctx context.Context) (model.SearchRequest, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, s.name)
	if err != nil {
		return model.SearchRequest{}, err
	}

	var h header
	if err := (codec.JSON{}).Unmarshal(data, &h); err != nil {
		return model.SearchRequest{}, fmt.Errorf("decode setup header: %w", err)
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return model.SearchRequest{}, &ErrUnknownCodec{Codec: h.Codec}
	}

	var env envelope
	if err := c.Unmarshal(data, &env); err != nil {
		return model.SearchRequest{}, fmt.Errorf("decode setup: %w", err)
	}
	return env.Request, nil
}

// Clear removes the saved setup, if any.
func (s *Store) Clear(ctx context.Context) error {
	return s.blobs.Delete(ctx, s.name)
}
