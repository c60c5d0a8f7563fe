package registration

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/frahmantamala/staff-registry/internal/notification"
	"github.com/frahmantamala/staff-registry/internal/user"
)

// Repository stores pending requests. Create maps a duplicate reg_no or
// email onto internal.ErrRequestPending. Promote inserts the account and
// deletes the request in one transaction; account conflicts come back as
// ErrRegNoInUse, ErrEmailInUse or ErrUsernameInUse.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	List(ctx context.Context) ([]*Request, error)
	GetByID(ctx context.Context, id string) (*Request, error)
	Delete(ctx context.Context, id string) error
	Promote(ctx context.Context, requestID string, account *user.Account) error
}

// AccountStore is the part of the account repository registration needs.
type AccountStore interface {
	ExistsByRegNoOrEmail(ctx context.Context, regNo, email string) (bool, error)
	Create(ctx context.Context, account *user.Account) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type RoleValidator interface {
	ValidateRole(ctx context.Context, role string) error
}

type ServiceDeps struct {
	Requests      Repository
	Accounts      AccountStore
	Hasher        PasswordHasher
	Roles         RoleValidator
	Notifier      notification.Notifier
	Publisher     events.Publisher
	Logger        *slog.Logger
	NotifyTimeout time.Duration
}

type Service struct {
	requests      Repository
	accounts      AccountStore
	hasher        PasswordHasher
	roles         RoleValidator
	notifier      notification.Notifier
	publisher     events.Publisher
	logger        *slog.Logger
	notifyTimeout time.Duration
}

func NewService(deps ServiceDeps) *Service {
	lg := deps.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		requests:      deps.Requests,
		accounts:      deps.Accounts,
		hasher:        deps.Hasher,
		roles:         deps.Roles,
		notifier:      deps.Notifier,
		publisher:     deps.Publisher,
		logger:        lg,
		notifyTimeout: deps.NotifyTimeout,
	}
}

// Submit queues a registration request for review.
func (s *Service) Submit(ctx context.Context, dto SubmitDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	// Early rejection only; the account unique indexes decide it in Accept.
	exists, err := s.accounts.ExistsByRegNoOrEmail(ctx, dto.RegNo, dto.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, internal.ErrAlreadyRegistered
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	req := &Request{
		RegNo:        dto.RegNo,
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		Hospital:     dto.Hospital,
		Designation:  dto.Designation,
		ContactNo:    dto.ContactNo,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("registration request submitted", "request_id", req.ID, "hospital", req.Hospital)
	s.publish(ctx, events.NewRegistrationEvent(events.EventTypeRegistrationSubmitted, req.ID, "", req.Email, ""))
	return req, nil
}

func (s *Service) List(ctx context.Context) ([]RequestSummary, error) {
	reqs, err := s.requests.List(ctx)
	if err != nil {
		s.logger.Error("failed to list registration requests", "error", err)
		return nil, err
	}
	out := make([]RequestSummary, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	return s.requests.GetByID(ctx, id)
}

// Accept turns the request into an account with the given role. The unique
// indexes on accounts decide conflicts, so two admins accepting the same
// request cannot both succeed.
func (s *Service) Accept(ctx context.Context, id string, dto AcceptDTO) (*AcceptResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.roles.ValidateRole(ctx, dto.Role); err != nil {
		return nil, err
	}

	account := &user.Account{
		Username:     firstNonEmpty(dto.Username, req.Username),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		RegNo:        req.RegNo,
		Role:         dto.Role,
		Hospital:     req.Hospital,
		Designation:  firstNonEmpty(dto.Designation, req.Designation),
		ContactNo:    firstNonEmpty(dto.ContactNo, req.ContactNo),
		Availability: true,
	}
	if err := s.requests.Promote(ctx, req.ID, account); err != nil {
		s.logger.Warn("failed to accept registration request", "request_id", req.ID, "error", err)
		return nil, err
	}

	s.logger.Info("registration request accepted", "request_id", req.ID, "account_id", account.ID, "role", account.Role)
	s.publish(ctx, events.NewRegistrationEvent(events.EventTypeRegistrationAccepted, req.ID, account.ID, account.Email, account.Role))

	result := &AcceptResult{AccountView: account.View(), Message: MessageAccepted}
	if !s.notify(ctx, req.Email, notification.OutcomeAccept, "", account.Username) {
		result.Warning = WarningNotificationFailed
	}
	return result, nil
}

// Reject deletes the request and tells the applicant why.
func (s *Service) Reject(ctx context.Context, id string, dto RejectDTO) (*RejectResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requests.Delete(ctx, req.ID); err != nil {
		return nil, err
	}

	s.logger.Info("registration request rejected", "request_id", req.ID)
	s.publish(ctx, events.NewRegistrationEvent(events.EventTypeRegistrationRejected, req.ID, "", req.Email, ""))

	result := &RejectResult{Message: MessageRejected}
	if !s.notify(ctx, req.Email, notification.OutcomeReject, dto.Reason, req.Username) {
		result.Warning = WarningNotificationFailed
	}
	return result, nil
}

// BootstrapAdmin creates a System Admin account without a review step.
func (s *Service) BootstrapAdmin(ctx context.Context, dto AdminSignupDTO) (*user.Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	account := &user.Account{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		RegNo:        dto.RegNo,
		Role:         user.RoleSystemAdmin,
		Hospital:     dto.Hospital,
		Availability: true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Warn("administrator account created through signup", "account_id", account.ID)
	return account, nil
}

// notify reports whether delivery succeeded. Failures never undo the decision.
func (s *Service) notify(ctx context.Context, address string, outcome notification.Outcome, reason, name string) bool {
	if s.notifier == nil {
		return false
	}

	nctx, cancel := internal.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(nctx, address, outcome, reason, name); err != nil {
		s.logger.Warn("registration notification failed", "outcome", outcome, "error", err)
		s.publish(ctx, events.NewNotificationFailedEvent(string(outcome), err))
		return false
	}
	return true
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
