package teams

import (
	"context"
	"log/slog"

	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/validation"
)

// Service owns team composition: every membership write is validated by
// the engine before it reaches the repository.
type Service struct {
	repo   Repository
	store  validation.Store
	engine *validation.Engine
	logger *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, store validation.Store, engine *validation.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, engine: engine, logger: logger}
}

// CreateTeam registers a new team.
func (s *Service) CreateTeam(ctx context.Context, name string) (Team, error) {
	return s.repo.CreateTeam(ctx, name)
}

// GetTeam returns one team.
func (s *Service) GetTeam(ctx context.Context, id int64) (Team, error) {
	return s.repo.GetTeam(ctx, id)
}

// ListTeams pages through all teams.
func (s *Service) ListTeams(ctx context.Context, limit, offset int) ([]Team, int, error) {
	return s.repo.ListTeams(ctx, limit, offset)
}

// AddMember validates and enrols an employee into a team.
func (s *Service) AddMember(ctx context.Context, input AddMemberInput) (Membership, validation.Verdict, error) {
	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeMembershipCreate,
		Membership: &validation.MembershipChange{
			TeamID:     input.TeamID,
			EmployeeID: input.EmployeeID,
			Role:       input.Role,
			IsLeader:   input.IsLeader,
			IsActive:   true,
		},
	})
	if err != nil {
		return Membership{}, validation.Verdict{}, err
	}
	if !verdict.Valid {
		return Membership{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	m, err := s.repo.AddMember(ctx, input)
	if err != nil {
		return Membership{}, verdict, err
	}
	s.logger.Info("member added",
		slog.Int64("membership_id", m.ID),
		slog.Int64("team_id", m.TeamID),
		slog.Int64("employee_id", m.EmployeeID),
		slog.Bool("is_leader", m.IsLeader))
	return m, verdict, nil
}

// AssignLeader promotes the employee's active membership to team leader.
// With Supersede unset an existing active leader rejects the assignment;
// with it set the incumbent is demoted in the same transaction.
func (s *Service) AssignLeader(ctx context.Context, input AssignLeaderInput) (Membership, validation.Verdict, error) {
	current, err := s.store.FindActiveMembership(ctx, input.TeamID, input.EmployeeID, 0)
	if err != nil {
		return Membership{}, validation.Verdict{}, err
	}
	if current == nil {
		return Membership{}, validation.Verdict{}, shared.ErrNotFound
	}

	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeMembershipUpdate,
		Membership: &validation.MembershipChange{
			ID:         current.ID,
			TeamID:     input.TeamID,
			EmployeeID: input.EmployeeID,
			IsLeader:   true,
			IsActive:   true,
		},
	})
	if err != nil {
		return Membership{}, validation.Verdict{}, err
	}
	if !verdict.Valid && !(input.Supersede && onlyLeaderConflicts(verdict)) {
		return Membership{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	m, err := s.repo.PromoteLeader(ctx, input.TeamID, input.EmployeeID, input.Supersede)
	if err != nil {
		return Membership{}, verdict, err
	}
	s.logger.Info("leader assigned",
		slog.Int64("team_id", m.TeamID),
		slog.Int64("employee_id", m.EmployeeID),
		slog.Bool("superseded", input.Supersede && !verdict.Valid))
	return m, verdict, nil
}

// onlyLeaderConflicts reports whether every blocking finding is the
// incumbent-leader one, i.e. the exact conflict Supersede is allowed to
// override.
func onlyLeaderConflicts(v validation.Verdict) bool {
	if len(v.Errors) == 0 {
		return false
	}
	for _, f := range v.Errors {
		if f.Code != validation.CodeLeaderExists {
			return false
		}
	}
	return true
}

// DeactivateMember retires a membership, releasing both uniqueness keys.
func (s *Service) DeactivateMember(ctx context.Context, membershipID int64) error {
	if err := s.repo.Deactivate(ctx, membershipID); err != nil {
		return err
	}
	s.logger.Info("member deactivated", slog.Int64("membership_id", membershipID))
	return nil
}

// GetMembership returns one membership row.
func (s *Service) GetMembership(ctx context.Context, id int64) (Membership, error) {
	return s.repo.GetMembership(ctx, id)
}

// ListMembers pages through a team's memberships.
func (s *Service) ListMembers(ctx context.Context, req ListMembersRequest) ([]Membership, int, error) {
	return s.repo.ListMembers(ctx, req)
}
