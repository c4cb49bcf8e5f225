package app

// Caller is the identity behind an incoming update, already classified
// against the allow-lists.
type Caller struct {
	ID         int64
	Supervisor bool
	Admin      bool
}

// AccessList classifies Telegram user ids. An empty list admits nobody.
type AccessList struct {
	supervisors map[int64]struct{}
	admins      map[int64]struct{}
}

func NewAccessList(supervisorIDs, adminIDs []int64) *AccessList {
	a := &AccessList{
		supervisors: make(map[int64]struct{}, len(supervisorIDs)),
		admins:      make(map[int64]struct{}, len(adminIDs)),
	}
	for _, id := range supervisorIDs {
		a.supervisors[id] = struct{}{}
	}
	for _, id := range adminIDs {
		a.admins[id] = struct{}{}
	}
	return a
}

func (a *AccessList) Caller(id int64) Caller {
	_, supervisor := a.supervisors[id]
	_, admin := a.admins[id]
	return Caller{ID: id, Supervisor: supervisor, Admin: admin}
}
