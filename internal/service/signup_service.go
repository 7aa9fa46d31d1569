package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/internal/signup"
	"peerlearn.app/server/pkg/apperror"
)

type IdentityInput struct {
	FullName string `json:"full_name" binding:"required"`
	Method   string `json:"method" binding:"omitempty,oneof=email phone"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type AcademicInput struct {
	College     string `json:"college" binding:"required"`
	University  string `json:"university" binding:"required"`
	Course      string `json:"course" binding:"required"`
	YearOfStudy string `json:"year_of_study" binding:"required"`
}

// SignupResult tells the client where to go next. The flow never lands the
// user in the dashboard: verification comes first, then an explicit login.
type SignupResult struct {
	AccountID      string `json:"account_id"`
	RedirectTo     string `json:"redirect_to"`
	Message        string `json:"message"`
	VerifyTokenDev string `json:"verify_token_dev,omitempty"`
}

// AccountCreator is the slice of the auth service the signup flow needs.
type AccountCreator interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*CreatedAccount, error)
}

type SignupService interface {
	Start(ctx context.Context) (signup.Flow, error)
	SubmitIdentity(ctx context.Context, flowID string, input IdentityInput) (signup.Flow, error)
	Back(ctx context.Context, flowID string) (signup.Flow, error)
	State(ctx context.Context, flowID string) (signup.Flow, error)
	Complete(ctx context.Context, flowID string, input AcademicInput) (*SignupResult, error)
}

type signupService struct {
	flows    signup.FlowStore
	accounts AccountCreator
	profiles repository.ProfileRepository
	search   SearchService
	devMode  bool
}

func NewSignupService(
	flows signup.FlowStore,
	accounts AccountCreator,
	profiles repository.ProfileRepository,
	search SearchService,
	devMode bool,
) SignupService {
	return &signupService{
		flows:    flows,
		accounts: accounts,
		profiles: profiles,
		search:   search,
		devMode:  devMode,
	}
}

func (s *signupService) Start(ctx context.Context) (signup.Flow, error) {
	flow := signup.NewFlow(uuid.NewString())
	if err := s.flows.Save(ctx, flow); err != nil {
		return signup.Flow{}, err
	}

	return flow, nil
}

// SubmitIdentity advances stage 1. No account is created here; the fields
// just move into the stored flow.
func (s *signupService) SubmitIdentity(ctx context.Context, flowID string, input IdentityInput) (signup.Flow, error) {
	flow, err := s.loadOrStart(ctx, flowID)
	if err != nil {
		return signup.Flow{}, err
	}

	next, err := signup.CompleteIdentity(flow, signup.Method(input.Method), signup.FormState{
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
	})
	if err != nil {
		return flow, fmt.Errorf("%s: %w", err.Error(), apperror.ErrInvalidInput)
	}

	if err := s.flows.Save(ctx, next); err != nil {
		return signup.Flow{}, err
	}

	return next, nil
}

// Back steps to stage 1 with every entered field preserved.
func (s *signupService) Back(ctx context.Context, flowID string) (signup.Flow, error) {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return signup.Flow{}, err
	}

	next := signup.Back(flow)
	if err := s.flows.Save(ctx, next); err != nil {
		return signup.Flow{}, err
	}

	return next, nil
}

func (s *signupService) State(ctx context.Context, flowID string) (signup.Flow, error) {
	return s.flows.Get(ctx, flowID)
}

// Complete runs the commit sequence: create the account, then insert the
// profile keyed by the new account ID. The profile insert is never attempted
// unless the account call succeeded. A failed profile insert leaves the
// account in place; there is no compensating delete.
func (s *signupService) Complete(ctx context.Context, flowID string, input AcademicInput) (*SignupResult, error) {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}

	flow, err = signup.CompleteAcademic(flow, signup.FormState{
		College:     input.College,
		University:  input.University,
		Course:      input.Course,
		YearOfStudy: input.YearOfStudy,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrInvalidInput)
	}

	acquired, err := s.flows.AcquireSubmit(ctx, flow.ID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("signup is already being submitted: %w", apperror.ErrConflict)
	}

	// keep the merged fields around so a failed commit can be retried
	if err := s.flows.Save(ctx, flow); err != nil {
		_ = s.flows.ReleaseSubmit(ctx, flow.ID)
		return nil, err
	}

	created, err := s.accounts.CreateAccount(ctx, CreateAccountInput{
		Email:    flow.Form.Email,
		Phone:    flow.Form.Phone,
		Password: flow.Form.Password,
		FullName: flow.Form.FullName,
	})
	if err != nil {
		_ = s.flows.ReleaseSubmit(ctx, flow.ID)
		return nil, err
	}

	year, err := signup.ParseYear(flow.Form.YearOfStudy)
	if err != nil {
		_ = s.flows.ReleaseSubmit(ctx, flow.ID)
		return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrInvalidInput)
	}

	profile := &model.Profile{
		AccountID:   created.Account.ID,
		Email:       created.Account.Email,
		Phone:       created.Account.Phone,
		FullName:    created.Account.FullName,
		College:     optional(flow.Form.College),
		University:  optional(flow.Form.University),
		Course:      optional(flow.Form.Course),
		YearOfStudy: &year,
		Subjects:    subjectsOrEmpty(flow.Form.Subjects),
		Interests:   pq.StringArray{},
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		// the account now exists without a profile; reconciliation is
		// handled out-of-band, so only report the failure
		_ = s.flows.ReleaseSubmit(ctx, flow.ID)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if s.search != nil {
		if err := s.search.IndexProfile(profile); err != nil {
			logIndexFailure(profile.AccountID, err)
		}
	}

	_ = s.flows.Delete(ctx, flow.ID)
	_ = s.flows.ReleaseSubmit(ctx, flow.ID)

	result := &SignupResult{
		AccountID:  created.Account.ID.String(),
		RedirectTo: "/auth/login",
		Message:    "Account created! Please check your email to verify.",
	}
	if s.devMode {
		result.VerifyTokenDev = created.VerifyToken
	}

	return result, nil
}

func (s *signupService) loadOrStart(ctx context.Context, flowID string) (signup.Flow, error) {
	if flowID == "" {
		return s.Start(ctx)
	}

	flow, err := s.flows.Get(ctx, flowID)
	if errors.Is(err, signup.ErrFlowNotFound) {
		return s.Start(ctx)
	}

	return flow, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func subjectsOrEmpty(subjects []string) pq.StringArray {
	if len(subjects) == 0 {
		return pq.StringArray{}
	}
	return pq.StringArray(subjects)
}
