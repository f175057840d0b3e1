// Package securestore persists the gate's secrets on the device.
//
// Every Store reports a missing key as (nil, nil) and any storage failure as
// an error wrapping common.ErrStorageFault, so callers can tell "no PIN set"
// from "storage unavailable". SetMany and DeleteMany are all-or-nothing:
// after a failure none of the batch is visible to Get.
package securestore

import "context"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}
