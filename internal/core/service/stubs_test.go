package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	nextID   int

	clearOTPCalls int
	deleted       []string
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.ProfileImage != nil {
		img := *a.ProfileImage
		clone.ProfileImage = &img
	}
	if a.OTPExpires != nil {
		exp := *a.OTPExpires
		clone.OTPExpires = &exp
	}
	if a.SessionIssuedAt != nil {
		at := *a.SessionIssuedAt
		clone.SessionIssuedAt = &at
	}
	return &clone
}

// seed stores an account directly, bypassing uniqueness checks.
func (r *stubAccountRepo) seed(a *domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		r.nextID++
		a.ID = fmt.Sprintf("acc_%d", r.nextID)
	}
	r.accounts[a.ID] = cloneAccount(a)
	return cloneAccount(a)
}

func (r *stubAccountRepo) get(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.accounts[id])
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	clone := cloneAccount(a)
	clone.ID = fmt.Sprintf("acc_%d", r.nextID)
	r.accounts[clone.ID] = clone
	return cloneAccount(clone), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) List(_ context.Context, filter ports.ListAccountsFilter) ([]*domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		all = append(all, cloneAccount(a))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubAccountRepo) mutate(id string, fn func(a *domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id string, changes ports.ProfileChanges) error {
	return r.mutate(id, func(a *domain.Account) {
		if changes.Name != nil {
			a.Name = *changes.Name
		}
		if changes.Role != nil {
			a.Role = *changes.Role
		}
		if changes.Image != nil {
			img := *changes.Image
			a.ProfileImage = &img
		}
	})
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, id string, hash string) error {
	return r.mutate(id, func(a *domain.Account) { a.PasswordHash = hash })
}

func (r *stubAccountRepo) MarkVerified(_ context.Context, id string) error {
	return r.mutate(id, func(a *domain.Account) { a.Status = domain.StatusVerified })
}

func (r *stubAccountRepo) SetOTP(_ context.Context, id string, code string, expires time.Time) error {
	return r.mutate(id, func(a *domain.Account) {
		a.OTP = code
		a.OTPExpires = &expires
	})
}

func (r *stubAccountRepo) ClearOTP(_ context.Context, id string) error {
	r.mu.Lock()
	r.clearOTPCalls++
	r.mu.Unlock()
	return r.mutate(id, func(a *domain.Account) {
		a.OTP = ""
		a.OTPExpires = nil
	})
}

func (r *stubAccountRepo) SetSessionIssued(_ context.Context, id string, at *time.Time) error {
	return r.mutate(id, func(a *domain.Account) { a.SessionIssuedAt = at })
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

// plainHasher "hashes" by prefixing, enough to tell hash from plaintext.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hash, plain string) bool   { return hash == "hashed:"+plain }

var errBadToken = errors.New("bad token")

// stubSigner encodes the account id into the token and honours an expiry
// measured against the shared fixed clock.
type stubSigner struct {
	now func() time.Time
	ttl time.Duration
}

func (s stubSigner) Sign(accountID string) (string, time.Time, error) {
	exp := s.now().Add(s.ttl)
	return fmt.Sprintf("tok|%s|%d", accountID, exp.Unix()), exp, nil
}

func (s stubSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "tok" {
		return "", errBadToken
	}
	var exp int64
	if _, err := fmt.Sscanf(parts[2], "%d", &exp); err != nil {
		return "", errBadToken
	}
	if !s.now().Before(time.Unix(exp, 0)) {
		return "", errBadToken
	}
	return parts[1], nil
}

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type stubImageHost struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	uploadErr error
}

func (h *stubImageHost) Upload(_ context.Context, img ports.ImageUpload) (*domain.ProfileImage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.uploadErr != nil {
		return nil, h.uploadErr
	}
	if img.Body != nil {
		_, _ = io.Copy(io.Discard, img.Body)
	}
	h.uploads++
	id := fmt.Sprintf("user-profiles/img_%d", h.uploads)
	return &domain.ProfileImage{ExternalID: id, URL: "https://img.test/" + id}, nil
}

func (h *stubImageHost) Destroy(_ context.Context, externalID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed = append(h.destroyed, externalID)
	return nil
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// sequenceCodes returns a generator yielding codes in order.
func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("no more codes")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

func testImage() *ports.ImageUpload {
	return &ports.ImageUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	}
}
