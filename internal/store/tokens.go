package store

import "context"

// BrowserTokens exposes one browser's token pair in the shape the API
// client's interceptor consumes.
type BrowserTokens struct {
	Store     Store
	BrowserID string
}

func (t BrowserTokens) Access(ctx context.Context) (string, error) {
	v, _, err := t.Store.Get(ctx, t.BrowserID, KeyAccessToken)
	return v, err
}

func (t BrowserTokens) Refresh(ctx context.Context) (string, error) {
	v, _, err := t.Store.Get(ctx, t.BrowserID, KeyRefreshToken)
	return v, err
}

func (t BrowserTokens) SetAccess(ctx context.Context, token string) error {
	return t.Store.Set(ctx, t.BrowserID, KeyAccessToken, token)
}

// Save persists a freshly issued token pair.
func (t BrowserTokens) Save(ctx context.Context, access, refresh string) error {
	if err := t.Store.Set(ctx, t.BrowserID, KeyAccessToken, access); err != nil {
		return err
	}
	return t.Store.Set(ctx, t.BrowserID, KeyRefreshToken, refresh)
}

func (t BrowserTokens) ClearAccess(ctx context.Context) error {
	return t.Store.Delete(ctx, t.BrowserID, KeyAccessToken)
}

func (t BrowserTokens) Clear(ctx context.Context) error {
	return t.Store.Delete(ctx, t.BrowserID, KeyAccessToken, KeyRefreshToken)
}
