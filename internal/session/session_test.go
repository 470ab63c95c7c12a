package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/model"
)

func employer() Identity {
	return Identity{UserID: uuid.New(), Name: "Erin", Email: "erin@example.com", Role: model.RoleEmployer}
}

func recv(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return Snapshot{}
	}
}

func TestRestore_Empty(t *testing.T) {
	store := New(NewFilePersister(t.TempDir()), nil)
	assert.False(t, store.Loaded())

	sess := store.Restore(context.Background())
	assert.True(t, sess.Empty())
	assert.True(t, store.Loaded())
}

func TestRestore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o600))

	store := New(NewFilePersister(dir), nil)
	assert.True(t, store.Restore(context.Background()).Empty())
}

func TestRestore_UnknownRole(t *testing.T) {
	p := NewMemoryPersister()
	require.NoError(t, p.Save(context.Background(), Session{Identity: Identity{Role: "HRD"}, Credential: "tok"}))

	store := New(p, nil)
	assert.True(t, store.Restore(context.Background()).Empty())
}

func TestEstablishPersistsAcrossStores(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	id := employer()

	first := New(NewFilePersister(dir), nil)
	first.Restore(ctx)
	require.NoError(t, first.Establish(ctx, id, "tok-1"))

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := New(NewFilePersister(dir), nil)
	sess := second.Restore(ctx)
	assert.Equal(t, "tok-1", sess.Credential)
	assert.Equal(t, id, sess.Identity)

	require.NoError(t, second.Clear(ctx))
	third := New(NewFilePersister(dir), nil)
	assert.True(t, third.Restore(ctx).Empty())
}

func TestEstablish_Validation(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	err := store.Establish(ctx, employer(), " ")
	require.Error(t, err)
	assert.True(t, apperror.Has(err, apperror.CodeValidation))
	assert.Contains(t, apperror.FieldsOf(err), "credential")

	bad := employer()
	bad.Role = "JOBSEEKER"
	err = store.Establish(ctx, bad, "tok")
	assert.Contains(t, apperror.FieldsOf(err), "role")
	assert.True(t, store.Current().Empty())
}

func TestEstablish_NormalizesRole(t *testing.T) {
	store := New(nil, nil)
	id := employer()
	id.Role = " employer"
	require.NoError(t, store.Establish(context.Background(), id, "tok"))
	assert.Equal(t, model.RoleEmployer, store.Current().Identity.Role)
}

func TestClear_Idempotent(t *testing.T) {
	store := New(NewFilePersister(t.TempDir()), nil)
	ctx := context.Background()
	store.Restore(ctx)
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	assert.True(t, store.Current().Empty())
}

func TestSubscribe(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()
	ch, cancel := store.Subscribe()
	defer cancel()

	first := recv(t, ch)
	assert.False(t, first.Loaded)

	store.Restore(ctx)
	assert.True(t, recv(t, ch).Loaded)

	require.NoError(t, store.Establish(ctx, employer(), "tok"))
	assert.Equal(t, "tok", recv(t, ch).Credential)

	require.NoError(t, store.Clear(ctx))
	snap := recv(t, ch)
	assert.True(t, snap.Empty())
	assert.True(t, snap.Loaded)
}

func TestSubscribe_SlowReaderSeesLatest(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()
	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Establish(ctx, employer(), "tok-1"))
	require.NoError(t, store.Establish(ctx, employer(), "tok-2"))
	require.NoError(t, store.Clear(ctx))

	snap := recv(t, ch)
	assert.True(t, snap.Empty())
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", extra)
	default:
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	store := New(nil, nil)
	ch, cancel := store.Subscribe()
	recv(t, ch)
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	ch2, _ := store.Subscribe()
	recv(t, ch2)
	store.Close()
	_, ok = <-ch2
	assert.False(t, ok)

	ch3, cancel3 := store.Subscribe()
	defer cancel3()
	_, ok = <-ch3
	assert.False(t, ok, "subscribing after Close gives a closed channel")
}

type failingPersister struct{ MemoryPersister }

func (p *failingPersister) Remove(context.Context) error { return errors.New("disk gone") }

func TestClear_StorageErrorStillClearsMemory(t *testing.T) {
	store := New(&failingPersister{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Establish(ctx, employer(), "tok"))

	err := store.Clear(ctx)
	require.Error(t, err)
	assert.True(t, store.Current().Empty())
}

func TestCookieMirror(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, _ := url.Parse("http://localhost:8080/api/v1")
	mirror := NewCookieMirror(jar, base)

	store := New(nil, mirror)
	ctx := context.Background()
	require.NoError(t, store.Establish(ctx, employer(), "tok"))

	values := map[string]string{}
	for _, c := range jar.Cookies(base) {
		values[c.Name] = c.Value
	}
	assert.Equal(t, map[string]string{CookieToken: "tok", CookieRole: model.RoleEmployer}, values)

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, jar.Cookies(base))
}

func TestFromCookies(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/hrd/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieToken, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: CookieRole, Value: model.RoleApplicant})

	token, role := FromCookies(req)
	assert.Equal(t, "tok", token)
	assert.Equal(t, model.RoleApplicant, role)

	empty, _ := http.NewRequest(http.MethodGet, "/", nil)
	token, role = FromCookies(empty)
	assert.Empty(t, token)
	assert.Empty(t, role)
}
