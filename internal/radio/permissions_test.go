package radio

import (
	"context"
	"errors"
	"testing"

	"ignis/internal/configstore"
)

type fakeStore struct {
	channels *configstore.Channels
	scopes   *configstore.Scopes
	err      error
}

func (f fakeStore) Channels(context.Context) (*configstore.Channels, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.channels == nil {
		return nil, configstore.ErrNotFound
	}
	return f.channels, nil
}

func (f fakeStore) Scopes(context.Context) (*configstore.Scopes, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.scopes == nil {
		return nil, configstore.ErrNotFound
	}
	return f.scopes, nil
}

func TestIsDJ(t *testing.T) {
	ctx := context.Background()
	withRole := fakeStore{scopes: &configstore.Scopes{Roles: configstore.ScopeRoles{DJ: &configstore.RoleRef{ID: "dj"}}}}

	if !IsDJ(ctx, fakeStore{}, nil) {
		t.Error("missing scopes document should allow")
	}
	if !IsDJ(ctx, fakeStore{err: errors.New("down")}, nil) {
		t.Error("store failure should allow")
	}
	if !IsDJ(ctx, fakeStore{scopes: &configstore.Scopes{}}, nil) {
		t.Error("unset DJ role should allow")
	}
	if IsDJ(ctx, withRole, []string{"other"}) {
		t.Error("member without the role should be refused")
	}
	if !IsDJ(ctx, withRole, []string{"other", "dj"}) {
		t.Error("member with the role should be allowed")
	}
}

func TestCheckChannel(t *testing.T) {
	ctx := context.Background()
	configured := fakeStore{channels: &configstore.Channels{Categories: []configstore.ChannelCategory{
		{Name: "geral", Channels: []configstore.ChannelRef{{Name: "bot", ID: "c1"}}},
	}}}

	if err := CheckChannel(ctx, fakeStore{}, "c1"); !errors.Is(err, ErrNoChannelConfig) {
		t.Errorf("missing doc: %v", err)
	}
	if err := CheckChannel(ctx, fakeStore{channels: &configstore.Channels{}}, "c1"); !errors.Is(err, ErrNoBotChannel) {
		t.Errorf("no bot channel: %v", err)
	}
	var wrong *WrongChannelError
	if err := CheckChannel(ctx, configured, "c2"); !errors.As(err, &wrong) || wrong.BotChannelID != "c1" {
		t.Errorf("wrong channel: %v", err)
	}
	if err := CheckChannel(ctx, configured, "c1"); err != nil {
		t.Errorf("right channel: %v", err)
	}
}
