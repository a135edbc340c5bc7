package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// compositeIndexes lists multi-column indexes that struct tags don't express.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	// Task list filters always run inside a project scope
	{"tasks", "idx_tasks_project_status", "project_id, status"},
	{"tasks", "idx_tasks_project_priority", "project_id, priority"},
	{"tasks", "idx_tasks_project_assigned_to", "project_id, assigned_to_id"},
}

// EnsureIndexes creates any missing composite index. Safe to run repeatedly.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
