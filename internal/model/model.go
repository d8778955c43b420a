package model

// All returns every entity that needs a table, in migration order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Package{},
		&MembershipGroup{},
		&Member{},
		&Video{},
		&Stream{},
		&Like{},
		&LedgerEntry{},
		&LoginHistory{},
	}
}
