package packs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// DisabledKey is the local storage key holding the disabled pack ids.
const DisabledKey = "ct_disabled_packs"

// KeyValueStore is local device storage. Get returns nil when the key is unset.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DisabledSet persists the operator's disabled pack ids as a JSON array.
type DisabledSet struct {
	kv KeyValueStore
}

func NewDisabledSet(kv KeyValueStore) *DisabledSet {
	return &DisabledSet{kv: kv}
}

func (d *DisabledSet) Load(ctx context.Context) (map[string]bool, error) {
	data, err := d.kv.Get(ctx, DisabledKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	if len(data) == 0 {
		return out, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return out, fmt.Errorf("decode disabled packs: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (d *DisabledSet) Disable(ctx context.Context, packID string) error {
	return d.update(ctx, func(ids map[string]bool) { ids[packID] = true })
}

func (d *DisabledSet) Enable(ctx context.Context, packID string) error {
	return d.update(ctx, func(ids map[string]bool) { delete(ids, packID) })
}

func (d *DisabledSet) update(ctx context.Context, mutate func(map[string]bool)) error {
	ids, err := d.Load(ctx)
	if ids == nil {
		return err
	}
	mutate(ids)

	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return d.kv.Set(ctx, DisabledKey, data)
}
