package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Datastore {
	t.Helper()
	return openTestStoreAt(t, filepath.Join(t.TempDir(), "store.json"))
}

func openTestStoreAt(t *testing.T, path string) *Datastore {
	t.Helper()
	d, err := OpenDatastore(path)
	if err != nil {
		t.Fatalf("OpenDatastore: %v", err)
	}
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return d
}

func TestDatastoreMissingDocuments(t *testing.T) {
	d := openTestStore(t)
	ctx := context.Background()

	if _, err := d.Channels(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Channels err = %v", err)
	}
	if _, err := d.Radios(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Radios err = %v", err)
	}
}

func TestDatastorePutAndRead(t *testing.T) {
	d := openTestStore(t)
	ctx := context.Background()

	docs := map[string]string{
		DocChannels: `{"categorias":[{"nome":"logs","canais":[{"nome":"bot","id":"10"}]}]}`,
		DocScopes:   `{"cargos":{"dj":{"id":"20"}}}`,
		DocStatus:   `{"colors":{"positive":"#010203"},"emojis":{"move":"➡️"}}`,
		DocRadios:   `{"_id":"radios","Brasil":[{"name":"Rádio A","url":"http://a"}],"note":"ignored","Vazio":[]}`,
	}
	for id, raw := range docs {
		if err := d.Put(ctx, id, json.RawMessage(raw)); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}

	ch, err := d.Channels(ctx)
	if err != nil || ch.ChannelByName(ChannelBot) != "10" {
		t.Errorf("Channels = %+v, %v", ch, err)
	}
	sc, err := d.Scopes(ctx)
	if err != nil || sc.DJRoleID() != "20" {
		t.Errorf("Scopes = %+v, %v", sc, err)
	}
	st, err := d.Status(ctx)
	if err != nil || st.Color(StatusPositive) != 0x010203 || st.Emoji(StatusChange) != "➡️" {
		t.Errorf("Status = %+v, %v", st, err)
	}

	radios, err := d.Radios(ctx)
	if err != nil {
		t.Fatalf("Radios: %v", err)
	}
	if _, ok := radios["note"]; ok {
		t.Error("non-array key should be skipped")
	}
	if _, ok := radios["_id"]; ok {
		t.Error("_id should be skipped")
	}
	if got := radios["Brasil"]; len(got) != 1 || got[0].URL != "http://a" {
		t.Errorf("Brasil = %+v", got)
	}
	if got, ok := radios["Vazio"]; !ok || len(got) != 0 {
		t.Errorf("empty list should decode as empty, got %v (present=%v)", got, ok)
	}
}

func TestDatastorePutRejectsNonObject(t *testing.T) {
	d := openTestStore(t)
	if err := d.Put(context.Background(), DocStatus, json.RawMessage(`[1,2]`)); err == nil {
		t.Fatal("expected error for array document")
	}
}

func TestDatastoreCloseAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	d, err := OpenDatastore(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := d.Put(ctx, DocScopes, json.RawMessage(`{"cargos":{"dj":{"id":"20"}}}`)); err != nil {
		t.Fatal(err)
	}

	closed := make(chan error, 1)
	go func() { closed <- d.Close(ctx) }()
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("Close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	reopened := openTestStoreAt(t, path)
	sc, err := reopened.Scopes(ctx)
	if err != nil || sc.DJRoleID() != "20" {
		t.Errorf("Scopes after reopen = %+v, %v", sc, err)
	}
}

func TestSharedDatastoreStaysOpen(t *testing.T) {
	owner := openTestStore(t)
	shared := NewDatastore(owner.ds)
	ctx := context.Background()

	if err := shared.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := owner.Put(ctx, DocStatus, json.RawMessage(`{}`)); err != nil {
		t.Errorf("Put after closing the shared view: %v", err)
	}
}
