package domain

// Member is one connection's participation in a room.
// It holds a snapshot of the user taken at connect time.
type Member struct {
	User     User
	JoinedAt float64
}

func NewMember(user User, now float64) *Member {
	return &Member{User: user, JoinedAt: now}
}
