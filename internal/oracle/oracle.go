// Package oracle is the read side of the price store. Asset records are
// written out-of-band by the price-refresh collaborator; the engine only
// looks them up.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/store"
)

// Oracle resolves ticker symbols to asset records.
type Oracle struct {
	store store.Store
}

// New creates an oracle over the given store.
func New(st store.Store) *Oracle {
	return &Oracle{store: st}
}

// Normalize uppercases and trims a user-supplied symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup returns the asset for a symbol, or (nil, nil) when the symbol is
// unknown. Unknown symbols are a user-facing "not found", not a failure.
func (o *Oracle) Lookup(ctx context.Context, symbol string) (*model.Asset, error) {
	a, err := o.store.GetAsset(ctx, Normalize(symbol))
	if err != nil {
		return nil, fmt.Errorf("lookup asset %s: %w", symbol, err)
	}
	return a, nil
}

// List returns all known assets, optionally filtered by class.
func (o *Oracle) List(ctx context.Context, class string) ([]model.Asset, error) {
	return o.store.ListAssets(ctx, class)
}
