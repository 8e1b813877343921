package database

import (
	"database/sql"
	"log"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// RecordSystemLog writes an audit record. It is best-effort: a failed
// audit write is logged and swallowed so it never fails the action it
// describes.
func RecordSystemLog(db *sql.DB, entry *models.SystemLog) {
	query := `INSERT INTO system_logs (user_id, action, entity_type, entity_id, details, ip_address)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db.Exec(query,
		entry.UserID, entry.Action, nullIfEmpty(entry.EntityType),
		nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Details),
		nullIfEmpty(entry.IPAddress),
	)
	if err != nil {
		log.Printf("Failed to record system log (%s): %v", entry.Action, err)
	}
}

// GetRecentSystemLogs returns the latest audit records, newest first.
func GetRecentSystemLogs(db *sql.DB, limit int) ([]*models.SystemLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, user_id, action, entity_type, entity_id, details, ip_address, created_at
			  FROM system_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.SystemLog
	for rows.Next() {
		l := &models.SystemLog{}
		var entityType, entityID, details, ipAddress sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &entityType, &entityID, &details, &ipAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.EntityType = entityType.String
		l.EntityID = entityID.String
		l.Details = details.String
		l.IPAddress = ipAddress.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
