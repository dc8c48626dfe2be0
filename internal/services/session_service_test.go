package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
)

var sessionTestSecret = []byte("0123456789abcdef0123456789abcdef")

func newSessionServiceForTest(users *stubUserRepo, sessions *stubSessionRepo, now time.Time) *SessionService {
	service := NewSessionService(sessions, users, sessionTestSecret)
	service.now = func() time.Time { return now }
	return service
}

func TestSessionIssueAndAuthenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := newStubUserRepo(models.User{ID: 5, Username: "budi", FullName: "Budi", Status: models.UserStatusApproved})
	sessions := newStubSessionRepo()
	service := newSessionServiceForTest(users, sessions, now)

	issued, err := service.Issue(users.users[5], false, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !issued.ExpiresAt.Equal(now.Add(DefaultSessionTTL)) {
		t.Fatalf("expected default ttl, got expiry %s", issued.ExpiresAt)
	}

	identity, err := service.Authenticate(issued.Token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if identity.UserID != 5 || identity.Username != "budi" || identity.SessionID != issued.SessionID {
		t.Fatalf("unexpected identity %#v", identity)
	}

	remembered, err := service.Issue(users.users[5], true, "", "")
	if err != nil {
		t.Fatalf("Issue remember_me returned error: %v", err)
	}
	if !remembered.ExpiresAt.Equal(now.Add(RememberedSessionTTL)) {
		t.Fatalf("expected remembered ttl, got expiry %s", remembered.ExpiresAt)
	}
}

func TestSessionRevokedTokenIsRejected(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := newStubUserRepo(models.User{ID: 5, Username: "budi", Status: models.UserStatusApproved})
	sessions := newStubSessionRepo()
	service := newSessionServiceForTest(users, sessions, now)

	issued, err := service.Issue(users.users[5], false, "", "")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := service.Revoke(issued.SessionID); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := service.Authenticate(issued.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
}

func TestSessionDroppedWhenUserNoLongerApproved(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := newStubUserRepo(models.User{ID: 5, Username: "budi", Status: models.UserStatusApproved})
	sessions := newStubSessionRepo()
	service := newSessionServiceForTest(users, sessions, now)

	issued, err := service.Issue(users.users[5], false, "", "")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	user := users.users[5]
	user.Status = models.UserStatusRejected
	users.users[5] = user

	if _, err := service.Authenticate(issued.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, ok := sessions.sessions[issued.SessionID]; ok {
		t.Fatalf("expected session row to be dropped")
	}
}

func TestSessionRejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := newStubUserRepo(models.User{ID: 5, Username: "budi", Status: models.UserStatusApproved})
	sessions := newStubSessionRepo()
	service := newSessionServiceForTest(users, sessions, issuedAt)

	issued, err := service.Issue(users.users[5], false, "", "")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	later := newSessionServiceForTest(users, sessions, issuedAt.Add(DefaultSessionTTL+time.Minute))
	if _, err := later.Authenticate(issued.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	foreign := NewSessionService(sessions, users, []byte("another-secret-key-that-is-32-bytes!"))
	foreign.now = func() time.Time { return issuedAt }
	if _, err := foreign.Authenticate(issued.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected token signed with another key to be rejected, got %v", err)
	}

	if _, err := service.Authenticate("not-a-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected garbage token to be rejected, got %v", err)
	}
}

func TestSessionIssuePrunesExpiredRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := newStubUserRepo(models.User{ID: 5, Username: "budi", Status: models.UserStatusApproved})
	sessions := newStubSessionRepo()
	sessions.sessions["stale"] = models.Session{ID: "stale", UserID: 5, ExpiresAt: now.Add(-time.Hour)}
	service := newSessionServiceForTest(users, sessions, now)

	if _, err := service.Issue(users.users[5], false, "", ""); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, ok := sessions.sessions["stale"]; ok {
		t.Fatalf("expected expired session to be pruned")
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	if err := Authorize(nil, RoleUser); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for nil identity, got %v", err)
	}
	if err := Authorize(userIdentity(2), RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if err := Authorize(adminIdentity(), RoleAdmin); err != nil {
		t.Fatalf("expected admin to be allowed, got %v", err)
	}
}
