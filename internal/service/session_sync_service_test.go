package service

import (
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSessionOwner(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"well formed", "session:" + id.String() + ":token-1", true},
		{"token id with colons", "session:" + id.String() + ":a:b", true},
		{"missing token id", "session:" + id.String(), false},
		{"empty token id", "session:" + id.String() + ":", false},
		{"not a uuid", "session:42:token-1", false},
		{"missing prefix", id.String() + ":token-1", false},
		{"other namespace", "analysis:" + id.String() + ":token-1", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sessionOwner(tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, id, got)
			} else {
				assert.Equal(t, uuid.Nil, got)
			}
		})
	}
}

func TestStaleKeys(t *testing.T) {
	active, inactive, deleted := uuid.New(), uuid.New(), uuid.New()
	key := func(id uuid.UUID, token string) string { return "session:" + id.String() + ":" + token }

	keys := []string{
		key(active, "a1"), key(active, "a2"),
		key(inactive, "i1"),
		key(deleted, "d1"), key(deleted, "d2"),
		"session:garbage",
	}

	owners, malformed := groupByOwner(keys)
	assert.Len(t, owners, 3)
	assert.Equal(t, []string{"session:garbage"}, malformed)
	assert.Equal(t, []string{key(active, "a1"), key(active, "a2")}, owners[active])

	// Only the active user survives the lookup; inactive and deleted users
	// are indistinguishable from the whitelist's point of view.
	stale := staleKeys(owners, []uuid.UUID{active}, malformed)
	sort.Strings(stale)
	want := []string{key(inactive, "i1"), key(deleted, "d1"), key(deleted, "d2"), "session:garbage"}
	sort.Strings(want)
	assert.Equal(t, want, stale)

	assert.Empty(t, staleKeys(map[uuid.UUID][]string{active: {key(active, "a1")}}, []uuid.UUID{active}, nil))
}

func TestSessionSyncStartStop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewSessionSyncService(nil, nil, log, time.Hour)

	svc.Start()
	svc.Start()
	svc.Stop()
	svc.Stop()
}
