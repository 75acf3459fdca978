package domain

import "time"

// Group is a set of members sharing expenses in a single currency.
type Group struct {
	ID        string
	Name      string
	Currency  string
	Members   []*Member
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is one person's membership record within a group.
type Member struct {
	ID       string
	GroupID  string
	Name     string
	JoinedAt time.Time
}

// HasMember reports whether the group contains the given member ID.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// Validate checks group invariants.
func (g *Group) Validate() error {
	if err := ValidateGroupName(g.Name); err != nil {
		return err
	}
	return ValidateCurrency(g.Currency)
}
