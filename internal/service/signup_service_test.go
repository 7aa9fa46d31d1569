package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/signup"
)

type memFlowStore struct {
	flows  map[string]signup.Flow
	locked map[string]bool
}

func newMemFlowStore() *memFlowStore {
	return &memFlowStore{
		flows:  make(map[string]signup.Flow),
		locked: make(map[string]bool),
	}
}

func (s *memFlowStore) Save(ctx context.Context, flow signup.Flow) error {
	s.flows[flow.ID] = flow
	return nil
}

func (s *memFlowStore) Get(ctx context.Context, id string) (signup.Flow, error) {
	flow, ok := s.flows[id]
	if !ok {
		return signup.Flow{}, signup.ErrFlowNotFound
	}
	return flow, nil
}

func (s *memFlowStore) Delete(ctx context.Context, id string) error {
	delete(s.flows, id)
	return nil
}

func (s *memFlowStore) AcquireSubmit(ctx context.Context, id string) (bool, error) {
	if s.locked[id] {
		return false, nil
	}
	s.locked[id] = true
	return true, nil
}

func (s *memFlowStore) ReleaseSubmit(ctx context.Context, id string) error {
	delete(s.locked, id)
	return nil
}

type fakeAccountCreator struct {
	calls int
	fail  error
	last  CreateAccountInput
}

func (f *fakeAccountCreator) CreateAccount(ctx context.Context, input CreateAccountInput) (*CreatedAccount, error) {
	f.calls++
	f.last = input
	if f.fail != nil {
		return nil, f.fail
	}
	return &CreatedAccount{
		Account: &model.Account{
			ID:       uuid.New(),
			Email:    input.Email,
			FullName: input.FullName,
		},
		VerifyToken: "dev-token",
	}, nil
}

type fakeProfileRepo struct {
	calls   int
	fail    error
	created *model.Profile
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.created = profile
	return nil
}

func (f *fakeProfileRepo) FindByAccountID(ctx context.Context, accountID string) (*model.Profile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *model.Profile) error { return nil }

func (f *fakeProfileRepo) MarkVerified(ctx context.Context, accountID string) error { return nil }

func (f *fakeProfileRepo) TouchLastActive(ctx context.Context, accountID string) error { return nil }

func identityInput() IdentityInput {
	return IdentityInput{
		FullName: "Jane Doe",
		Method:   "email",
		Email:    "jane@university.edu",
		Password: "secret123",
	}
}

func academicInput() AcademicInput {
	return AcademicInput{
		College:     "Engineering College",
		University:  "State University",
		Course:      "Computer Science",
		YearOfStudy: "3rd Year",
	}
}

func TestSubmitIdentityCreatesNoAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	accounts := &fakeAccountCreator{}
	profiles := &fakeProfileRepo{}
	svc := NewSignupService(store, accounts, profiles, nil, true)

	started, err := svc.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	flow, err := svc.SubmitIdentity(ctx, started.ID, identityInput())
	if err != nil {
		t.Fatalf("identity: %v", err)
	}

	if flow.Stage != signup.StageAcademic {
		t.Fatalf("stage = %d, want %d", flow.Stage, signup.StageAcademic)
	}
	if accounts.calls != 0 {
		t.Fatalf("account creator called %d times during stage one, want 0", accounts.calls)
	}
	if profiles.calls != 0 {
		t.Fatalf("profile repo called %d times during stage one, want 0", profiles.calls)
	}
}

func TestSubmitIdentityWithoutCookieStartsFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	svc := NewSignupService(store, &fakeAccountCreator{}, &fakeProfileRepo{}, nil, true)

	flow, err := svc.SubmitIdentity(ctx, "", identityInput())
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if flow.ID == "" {
		t.Fatal("no flow id assigned")
	}
	if _, err := store.Get(ctx, flow.ID); err != nil {
		t.Fatalf("flow not persisted: %v", err)
	}
}

func TestCompleteHappyPath(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	accounts := &fakeAccountCreator{}
	profiles := &fakeProfileRepo{}
	svc := NewSignupService(store, accounts, profiles, nil, true)

	started, _ := svc.Start(ctx)
	if _, err := svc.SubmitIdentity(ctx, started.ID, identityInput()); err != nil {
		t.Fatalf("identity: %v", err)
	}

	result, err := svc.Complete(ctx, started.ID, academicInput())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if accounts.calls != 1 {
		t.Fatalf("account created %d times, want 1", accounts.calls)
	}
	if accounts.last.Email != "jane@university.edu" {
		t.Fatalf("account email = %q", accounts.last.Email)
	}
	if profiles.created == nil {
		t.Fatal("profile not created")
	}
	if profiles.created.YearOfStudy == nil || *profiles.created.YearOfStudy != 3 {
		t.Fatalf("year of study = %v, want 3", profiles.created.YearOfStudy)
	}
	if profiles.created.Subjects == nil || len(profiles.created.Subjects) != 0 {
		t.Fatalf("subjects = %v, want empty non-nil", profiles.created.Subjects)
	}
	if result.RedirectTo != "/auth/login" {
		t.Fatalf("redirect = %q, want /auth/login", result.RedirectTo)
	}
	if result.VerifyTokenDev != "dev-token" {
		t.Fatalf("verify token = %q", result.VerifyTokenDev)
	}
	if _, err := store.Get(ctx, started.ID); !errors.Is(err, signup.ErrFlowNotFound) {
		t.Fatal("flow should be deleted after a successful commit")
	}
}

func TestCompleteAccountFailureSkipsProfile(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	accounts := &fakeAccountCreator{fail: errors.New("provider down")}
	profiles := &fakeProfileRepo{}
	svc := NewSignupService(store, accounts, profiles, nil, true)

	started, _ := svc.Start(ctx)
	if _, err := svc.SubmitIdentity(ctx, started.ID, identityInput()); err != nil {
		t.Fatalf("identity: %v", err)
	}

	if _, err := svc.Complete(ctx, started.ID, academicInput()); err == nil {
		t.Fatal("expected error from account creation")
	}

	if profiles.calls != 0 {
		t.Fatalf("profile attempted after account failure, calls = %d", profiles.calls)
	}

	// fields survive so the user can retry
	flow, err := store.Get(ctx, started.ID)
	if err != nil {
		t.Fatalf("flow lost after failed commit: %v", err)
	}
	if flow.Form.FullName != "Jane Doe" || flow.Form.College != "Engineering College" {
		t.Fatalf("entered fields lost: %+v", flow.Form)
	}
	if store.locked[started.ID] {
		t.Fatal("submit lock not released after failure")
	}
}

func TestCompleteProfileFailureKeepsAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	accounts := &fakeAccountCreator{}
	profiles := &fakeProfileRepo{fail: errors.New("insert failed")}
	svc := NewSignupService(store, accounts, profiles, nil, true)

	started, _ := svc.Start(ctx)
	if _, err := svc.SubmitIdentity(ctx, started.ID, identityInput()); err != nil {
		t.Fatalf("identity: %v", err)
	}

	if _, err := svc.Complete(ctx, started.ID, academicInput()); err == nil {
		t.Fatal("expected error from profile creation")
	}

	if accounts.calls != 1 {
		t.Fatalf("account created %d times, want 1", accounts.calls)
	}
}

func TestCompleteRejectsConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	accounts := &fakeAccountCreator{}
	svc := NewSignupService(store, accounts, &fakeProfileRepo{}, nil, true)

	started, _ := svc.Start(ctx)
	if _, err := svc.SubmitIdentity(ctx, started.ID, identityInput()); err != nil {
		t.Fatalf("identity: %v", err)
	}

	// simulate a submit already in flight
	store.locked[started.ID] = true

	if _, err := svc.Complete(ctx, started.ID, academicInput()); err == nil {
		t.Fatal("expected concurrent submit to be rejected")
	}
	if accounts.calls != 0 {
		t.Fatalf("account created during locked submit, calls = %d", accounts.calls)
	}
}

func TestCompleteRequiresAcademicStage(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	svc := NewSignupService(store, &fakeAccountCreator{}, &fakeProfileRepo{}, nil, true)

	started, _ := svc.Start(ctx)

	if _, err := svc.Complete(ctx, started.ID, academicInput()); err == nil {
		t.Fatal("expected stage error completing a fresh flow")
	}
}

func TestBackKeepsEnteredFields(t *testing.T) {
	ctx := context.Background()
	store := newMemFlowStore()
	svc := NewSignupService(store, &fakeAccountCreator{}, &fakeProfileRepo{}, nil, true)

	started, _ := svc.Start(ctx)
	if _, err := svc.SubmitIdentity(ctx, started.ID, identityInput()); err != nil {
		t.Fatalf("identity: %v", err)
	}

	flow, err := svc.Back(ctx, started.ID)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if flow.Stage != signup.StageIdentity {
		t.Fatalf("stage = %d, want %d", flow.Stage, signup.StageIdentity)
	}
	if flow.Form.Email != "jane@university.edu" || flow.Form.Password != "secret123" {
		t.Fatalf("fields lost on back: %+v", flow.Form)
	}
}
