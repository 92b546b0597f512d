package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/saitap-dev/saitap/backend/internal/domain"
	"github.com/saitap-dev/saitap/backend/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// flakyStore 包装内存存储，可以让指定操作失败
type flakyStore struct {
	*kv.Memory
	failGet, failSet, failDelete bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errBoom
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errBoom
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errBoom
	}
	return f.Memory.Delete(ctx, key)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoadedStore(t *testing.T, store kv.Store) *Store {
	t.Helper()
	s := New(store, discardLogger())
	s.Load(context.Background())
	return s
}

func TestLoadWithoutPersistedUser(t *testing.T) {
	s := New(kv.NewMemory(), discardLogger())
	assert.Equal(t, StatusLoading, s.State().Status)
	assert.False(t, s.IsAuthenticated())

	s.Load(context.Background())
	assert.Equal(t, StatusLoggedOut, s.State().Status)
	assert.Nil(t, s.CurrentUser())
}

func TestLoadRestoresPersistedUser(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	first := newLoadedStore(t, mem)
	require.True(t, first.Login(ctx, Credentials{EmployeeID: "mgr001", CompanyCode: "DEMO001"}))
	first.UpdateUserProgress(ctx, 100)

	restarted := newLoadedStore(t, mem)
	require.True(t, restarted.IsAuthenticated())
	user := restarted.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.Equal(t, 2550, user.XP)
	assert.Equal(t, 6, user.Level)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		store func() kv.Store
	}{
		{
			name: "read error",
			store: func() kv.Store {
				return &flakyStore{Memory: kv.NewMemory(), failGet: true}
			},
		},
		{
			name: "corrupt blob",
			store: func() kv.Store {
				m := kv.NewMemory()
				_ = m.Set(context.Background(), UserKey, []byte("{not json"))
				return m
			},
		},
		{
			name: "null blob",
			store: func() kv.Store {
				m := kv.NewMemory()
				_ = m.Set(context.Background(), UserKey, []byte("null"))
				return m
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newLoadedStore(t, tc.store())
			assert.Equal(t, StatusLoggedOut, s.State().Status)
			assert.Nil(t, s.CurrentUser())
		})
	}
}

func TestLoginBuildsUser(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newLoadedStore(t, mem)

	ok := s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"})
	require.True(t, ok)
	require.True(t, s.IsAuthenticated())

	user := s.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, "John Smith", user.Name)
	assert.Equal(t, domain.RoleWorker, user.Role)
	assert.Equal(t, "worker001", user.EmployeeID)
	assert.Equal(t, "DEMO001", user.CompanyID)
	assert.Equal(t, "en", user.Language)
	assert.Equal(t, 3, user.SkillLevel)
	assert.Equal(t, 2450, user.XP)
	assert.Equal(t, 7, user.Level)
	assert.Equal(t, []string{"Safety First", "Quick Learner", "Team Player"}, user.Badges)

	raw, err := mem.Get(ctx, UserKey)
	require.NoError(t, err)
	var persisted domain.User
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, *user, persisted)
}

func TestLoginRoleAssignment(t *testing.T) {
	tests := []struct {
		employeeID string
		want       domain.Role
	}{
		{"mgr001", domain.RoleManager},
		{"teammgr", domain.RoleManager},
		{"worker001", domain.RoleWorker},
		{"MGR001", domain.RoleWorker},
		{"biometric_user", domain.RoleWorker},
	}

	for _, tc := range tests {
		t.Run(tc.employeeID, func(t *testing.T) {
			s := newLoadedStore(t, kv.NewMemory())
			require.True(t, s.Login(context.Background(), Credentials{EmployeeID: tc.employeeID, CompanyCode: "DEMO001"}))
			assert.Equal(t, tc.want, s.CurrentUser().Role)
		})
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty employee id", Credentials{CompanyCode: "DEMO001"}},
		{"empty company code", Credentials{EmployeeID: "worker001"}},
		{"both empty", Credentials{Biometric: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mem := kv.NewMemory()
			s := newLoadedStore(t, mem)

			assert.False(t, s.Login(context.Background(), tc.creds))
			assert.Equal(t, StatusLoggedOut, s.State().Status)

			_, err := mem.Get(context.Background(), UserKey)
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestLoginWriteFailureLeavesStateUnchanged(t *testing.T) {
	s := newLoadedStore(t, &flakyStore{Memory: kv.NewMemory(), failSet: true})

	calls := 0
	s.Subscribe(func(Change) { calls++ })

	assert.False(t, s.Login(context.Background(), Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
	assert.Equal(t, 0, calls)
}

func TestBiometricLogin(t *testing.T) {
	s := newLoadedStore(t, kv.NewMemory())
	require.True(t, s.Login(context.Background(), BiometricCredentials()))

	user := s.CurrentUser()
	assert.Equal(t, "biometric_user", user.EmployeeID)
	assert.Equal(t, "DEMO001", user.CompanyID)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newLoadedStore(t, mem)
	require.True(t, s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))

	s.Logout(ctx)
	once := s.State()
	s.Logout(ctx)
	twice := s.State()

	assert.Equal(t, once, twice)
	assert.Equal(t, State{Status: StatusLoggedOut}, twice)

	_, err := mem.Get(ctx, UserKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestLogoutClearsStateWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Memory: kv.NewMemory()}
	s := newLoadedStore(t, store)
	require.True(t, s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))

	store.failDelete = true
	s.Logout(ctx)

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
}

func TestUpdateUserProgress(t *testing.T) {
	gains := []int{0, 1, 49, 50, 550, 10000}

	for _, g := range gains {
		s := newLoadedStore(t, kv.NewMemory())
		require.True(t, s.Login(context.Background(), Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))
		before := s.CurrentUser().XP

		updated := s.UpdateUserProgress(context.Background(), g)
		require.NotNil(t, updated)

		user := s.CurrentUser()
		assert.Equal(t, before+g, user.XP, "gain=%d", g)
		assert.Equal(t, (before+g)/500+1, user.Level, "gain=%d", g)
		assert.Equal(t, user, updated)
	}
}

func TestUpdateUserProgressNegativeIsNotClamped(t *testing.T) {
	s := newLoadedStore(t, kv.NewMemory())
	require.True(t, s.Login(context.Background(), Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))

	s.UpdateUserProgress(context.Background(), -3000)
	user := s.CurrentUser()
	assert.Equal(t, -550, user.XP)
	assert.Equal(t, -1, user.Level)
}

func TestUpdateUserProgressWithoutUserIsNoop(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newLoadedStore(t, mem)
	require.True(t, s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))
	s.Logout(ctx)

	calls := 0
	s.Subscribe(func(Change) { calls++ })

	before := s.State()
	assert.Nil(t, s.UpdateUserProgress(ctx, 100))
	assert.Equal(t, before, s.State())
	assert.Equal(t, 0, calls)

	_, err := mem.Get(ctx, UserKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestUpdateUserProgressKeepsMemoryWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Memory: kv.NewMemory()}
	s := newLoadedStore(t, store)
	require.True(t, s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))

	store.failSet = true
	s.UpdateUserProgress(ctx, 50)

	assert.Equal(t, 2500, s.CurrentUser().XP)

	// 持久化的数据停留在登录时的状态
	restarted := newLoadedStore(t, store.Memory)
	assert.Equal(t, 2450, restarted.CurrentUser().XP)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), discardLogger())

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Load(ctx)
	s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"})
	s.UpdateUserProgress(ctx, 50)
	s.Logout(ctx)
	s.Logout(ctx)

	require.Len(t, changes, 4)
	assert.Equal(t, ReasonLoaded, changes[0].Reason)
	assert.Equal(t, StatusLoggedOut, changes[0].State.Status)
	assert.Equal(t, ReasonLogin, changes[1].Reason)
	assert.True(t, changes[1].State.IsAuthenticated())
	assert.Equal(t, ReasonProgress, changes[2].Reason)
	assert.Equal(t, 50, changes[2].XPGained)
	assert.Equal(t, 2500, changes[2].State.User.XP)
	assert.Equal(t, ReasonLogout, changes[3].Reason)
	assert.Nil(t, changes[3].State.User)

	unsubscribe()
	s.Login(ctx, Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"})
	assert.Len(t, changes, 4)
}

func TestLoadDoesNotOverrideEarlierLogin(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), discardLogger())

	require.True(t, s.Login(ctx, Credentials{EmployeeID: "mgr001", CompanyCode: "DEMO001"}))
	require.NoError(t, s.kv.Delete(ctx, UserKey))

	s.Load(ctx)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "mgr001", s.CurrentUser().EmployeeID)
}

func TestStateReturnsCopies(t *testing.T) {
	s := newLoadedStore(t, kv.NewMemory())
	require.True(t, s.Login(context.Background(), Credentials{EmployeeID: "worker001", CompanyCode: "DEMO001"}))

	user := s.CurrentUser()
	user.XP = 0
	user.Badges[0] = "changed"

	again := s.CurrentUser()
	assert.Equal(t, 2450, again.XP)
	assert.Equal(t, "Safety First", again.Badges[0])
}

func TestClose(t *testing.T) {
	s := New(kv.NewMemory(), discardLogger())
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.Close()
	s.Load(context.Background())
	assert.Equal(t, 0, calls)
}
