package teams

import "time"

// Team groups employees under at most one active leader.
type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership links one employee to one team. An employee holds at most
// one active membership per team; a team holds at most one active
// leader. Both rules are re-enforced by partial unique indexes.
type Membership struct {
	ID         int64
	TeamID     int64
	EmployeeID int64
	Role       string
	IsLeader   bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// --- Input DTOs ---

// AddMemberInput enrols an employee into a team.
type AddMemberInput struct {
	TeamID     int64
	EmployeeID int64
	Role       string
	IsLeader   bool
}

// AssignLeaderInput promotes an employee to team leader. Supersede
// controls what happens when the team already has an active leader:
// false rejects the assignment, true demotes the incumbent in the same
// transaction.
type AssignLeaderInput struct {
	TeamID     int64
	EmployeeID int64
	Supersede  bool
}

// ListMembersRequest filters the membership listing.
type ListMembersRequest struct {
	TeamID     int64
	ActiveOnly bool
	Limit      int
	Offset     int
}
