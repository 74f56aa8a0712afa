package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type blobDoc struct {
	Value []byte `firestore:"value"`
}

// FirestoreKV keeps one document per key in a collection.
type FirestoreKV struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreKV(client *firestore.Client, collection string) *FirestoreKV {
	return &FirestoreKV{client: client, collection: collection}
}

func (f *FirestoreKV) doc(key string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(key)
}

func (f *FirestoreKV) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var d blobDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d.Value, nil
}

func (f *FirestoreKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := f.doc(key).Set(ctx, blobDoc{Value: value})
	return err
}

func (f *FirestoreKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	ref := f.doc(key)
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current []byte
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			var d blobDoc
			if err := snap.DataTo(&d); err != nil {
				return fmt.Errorf("failed to parse %s: %w", key, err)
			}
			current = d.Value
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return tx.Set(ref, blobDoc{Value: next})
	})
}

func (f *FirestoreKV) Close() error {
	return f.client.Close()
}
