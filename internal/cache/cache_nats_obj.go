package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ocrkit/tesseract-service/internal/config"
)

// ObjectStoreCache persists OCR results in a NATS JetStream object store
// bucket, text as the object body and result metadata on the object.
type ObjectStoreCache struct {
	jetstream.ObjectStore
	nc *nats.Conn
	js jetstream.JetStream
}

func New(conf *config.OcrConfig, log *slog.Logger, nc *nats.Conn) (*ObjectStoreCache, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if nc == nil {
		return nil, errors.New("no connection to NATS")
	}
	js, err := setupJetstream(conf, nc, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	store, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Storage:     jetstream.FileStorage,
		Bucket:      conf.Bucket,
		Compression: true,
		Replicas:    conf.Replicas,
	})
	if err != nil {
		log.Error("Creating NATS object store failed", "err", err)
		return nil, fmt.Errorf("initializing NATS object store: %w", err)
	}
	log.Info("NATS object store initialized.")
	return &ObjectStoreCache{store, nc, js}, nil
}

func setupJetstream(conf *config.OcrConfig, nc *nats.Conn, log *slog.Logger) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		log.Error("FATAL: Error when initializing NATS JetStream", "err", err.Error())
		return nil, err
	}

	for attempts := 0; attempts <= conf.NatsConnectRetries; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_, err = js.AccountInfo(ctx)
		if err != nil {
			if errors.Is(err, jetstream.ErrJetStreamNotEnabled) || errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount) {
				return nil, err
			}
			log.Error("NATS JetStream check failed. Is JetStream enabled in external NATS server(s)?",
				"err", err,
				"count", attempts,
				"maxRetries", conf.NatsConnectRetries)
			time.Sleep(time.Second)
		} else {
			return js, nil
		}
	}
	return nil, fmt.Errorf("retry count exceeded: %w", err)
}

func (store ObjectStoreCache) GetMetadata(key string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	info, err := store.GetInfo(ctx, key)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving object metadata for %s: %w", key, err)
	}
	return info.Metadata, nil
}

func (store ObjectStoreCache) StreamText(key string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	obj, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("retrieving object %s from object store: %w", key, err)
	}
	_, err = io.Copy(w, obj)
	return err
}

func (store ObjectStoreCache) Save(res Result) (*jetstream.ObjectInfo, error) {
	m := jetstream.ObjectMeta{Metadata: res.Metadata, Name: res.Key}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return store.ObjectStore.Put(ctx, m, bytes.NewReader(res.Text))
}
