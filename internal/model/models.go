package model

// All returns every persisted model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&Project{},
		&Task{},
		&AuditLog{},
	}
}
