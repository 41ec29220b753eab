//go:build !without_sqlite

package memory

import (
	"context"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	"github.com/nucleusmind/contextengine/entity"
	myerrors "github.com/nucleusmind/contextengine/errors"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SqliteStore implements Store using SQLite with the sqlite-vec extension
type SqliteStore struct {
	db     *gorm.DB
	vecDim int
}

// SqliteMemoryRecord represents the database structure for memories
type SqliteMemoryRecord struct {
	ID             string `gorm:"primaryKey"`
	OrganizationID string `gorm:"index;not null"`
	UserID         string `gorm:"index"`

	Content         string
	MemoryType      string `gorm:"index"`
	ImportanceScore float64
	Metadata        datatypes.JSONType[map[string]any]

	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int
}

func (SqliteMemoryRecord) TableName() string {
	return "memories"
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a new SQLite-based memory store
func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	sqlite_vec.Auto()

	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)),
		&gorm.Config{},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database")
	}

	store := &SqliteStore{
		db:     db,
		vecDim: dimension,
	}

	if err := db.AutoMigrate(&SqliteMemoryRecord{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate memories table")
	}

	if err := store.createVectorTable(); err != nil {
		return nil, err
	}

	return store, nil
}

// DB exposes the underlying handle so the subscription tables can live in
// the same database file.
func (s *SqliteStore) DB() *gorm.DB {
	return s.db
}

func (s *SqliteStore) createVectorTable() error {
	// Verify sqlite-vec is loaded
	var sqliteVersion, vecVersion string
	err := s.db.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion)
	if err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(
			memory_id TEXT PRIMARY KEY,
			embedding float[%d]
		);
	`, s.vecDim)

	if err := s.db.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create memory_vectors table")
	}

	return nil
}

// Save implements Store.Save
func (s *SqliteStore) Save(ctx context.Context, memory *entity.Memory) error {
	if memory.OrganizationID == "" {
		return errors.Wrapf(myerrors.ErrInvalidParams, "memory must carry an organization id")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if memory.ID == "" {
			memory.ID = uuid.NewString()
		}
		if memory.CreatedAt.IsZero() {
			memory.CreatedAt = time.Now()
		}

		var existing SqliteMemoryRecord
		if r := tx.Find(&existing, "id = ?", memory.ID); r.Error != nil {
			return errors.Wrapf(r.Error, "failed to look up memory record")
		} else if r.RowsAffected > 0 && existing.OrganizationID != memory.OrganizationID {
			return errors.Errorf("memory '%s' belongs to another organization", memory.ID)
		}

		record := SqliteMemoryRecord{
			ID:              memory.ID,
			OrganizationID:  memory.OrganizationID,
			UserID:          memory.UserID,
			Content:         memory.Content,
			MemoryType:      memory.MemoryType,
			ImportanceScore: memory.ImportanceScore,
			Metadata:        datatypes.NewJSONType(memory.Metadata),
			CreatedAt:       memory.CreatedAt,
			LastAccessedAt:  memory.LastAccessedAt,
			AccessCount:     memory.AccessCount,
		}

		if err := tx.Save(&record).Error; err != nil {
			return errors.Wrapf(err, "failed to save memory record")
		}

		if len(memory.ContentEmbedding) > 0 {
			if err := tx.Exec("DELETE FROM memory_vectors WHERE memory_id = ?", memory.ID).Error; err != nil {
				return errors.Wrapf(err, "failed to delete existing vector")
			}

			serializedEmbedding, err := sqlite_vec.SerializeFloat32(memory.ContentEmbedding)
			if err != nil {
				return errors.Wrapf(err, "failed to serialize embedding")
			}

			insertSQL := "INSERT INTO memory_vectors (memory_id, embedding) VALUES (?, ?)"
			if err := tx.Exec(insertSQL, memory.ID, serializedEmbedding).Error; err != nil {
				return errors.Wrapf(err, "failed to insert memory vector")
			}
		}

		return nil
	})
}

// Get implements Store.Get
func (s *SqliteStore) Get(ctx context.Context, scope Scope, id string) (*entity.Memory, error) {
	var record SqliteMemoryRecord
	tx := s.db.WithContext(ctx).Where("organization_id = ?", scope.OrganizationID)
	if scope.UserID != "" {
		tx = tx.Where("user_id = ? OR user_id = ''", scope.UserID)
	}
	if err := tx.First(&record, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch memory record")
	}

	return recordToMemory(&record), nil
}

// Search implements Store.Search. Tenant scoping happens in SQL: only ids
// belonging to the scope are handed to the vector MATCH.
func (s *SqliteStore) Search(ctx context.Context, scope Scope, queryEmbedding []float32, opts SearchOptions) ([]ScoredMemory, error) {
	if !scope.IsValid() {
		return nil, errors.Wrapf(myerrors.ErrInvalidParams, "search scope requires an organization id")
	}
	if len(queryEmbedding) == 0 {
		return []ScoredMemory{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	// Resolve the scoped candidate ids first
	scopedQuery := s.db.WithContext(ctx).
		Model(&SqliteMemoryRecord{}).
		Where("organization_id = ?", scope.OrganizationID)
	if scope.UserID != "" {
		scopedQuery = scopedQuery.Where("user_id = ? OR user_id = ''", scope.UserID)
	}
	if len(opts.Types) > 0 {
		scopedQuery = scopedQuery.Where("memory_type IN ?", opts.Types)
	}
	if !opts.Since.IsZero() {
		scopedQuery = scopedQuery.Where("created_at >= ?", opts.Since)
	}

	var scopedIds []string
	if err := scopedQuery.Pluck("id", &scopedIds).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to resolve scoped memory ids")
	}
	if len(scopedIds) == 0 {
		return []ScoredMemory{}, nil
	}

	serializedQuery, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	searchSQL := `
		SELECT memory_id, distance
		FROM memory_vectors
		WHERE embedding MATCH ? AND memory_id IN ? AND k = ?
		ORDER BY distance
	`

	rows, err := s.db.WithContext(ctx).Raw(searchSQL, serializedQuery, scopedIds, limit).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute search query")
	}
	defer rows.Close()

	type searchResult struct {
		ID       string
		Distance float64
	}
	var searchResults []searchResult

	for rows.Next() {
		var result searchResult
		if err := rows.Scan(&result.ID, &result.Distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan result row")
		}
		searchResults = append(searchResults, result)
	}

	if len(searchResults) == 0 {
		return []ScoredMemory{}, nil
	}

	ids := make([]string, 0, len(searchResults))
	distanceMap := make(map[string]float64, len(searchResults))
	for _, result := range searchResults {
		ids = append(ids, result.ID)
		distanceMap[result.ID] = result.Distance
	}

	var records []SqliteMemoryRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch memory records")
	}

	recordMap := make(map[string]*SqliteMemoryRecord, len(records))
	for i := range records {
		recordMap[records[i].ID] = &records[i]
	}

	// Preserve the distance ordering from the vector search
	results := make([]ScoredMemory, 0, len(searchResults))
	for _, sr := range searchResults {
		record, ok := recordMap[sr.ID]
		if !ok {
			continue
		}
		results = append(results, ScoredMemory{
			Memory:    recordToMemory(record),
			Relevance: 1.0 - distanceMap[record.ID], // distance to similarity
		})
	}

	return results, nil
}

// RecordAccess implements Store.RecordAccess. The update stays scoped so a
// misdirected id can never touch another tenant's rows.
func (s *SqliteStore) RecordAccess(ctx context.Context, scope Scope, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).
		Model(&SqliteMemoryRecord{}).
		Where("id IN ? AND organization_id = ?", ids, scope.OrganizationID).
		Updates(map[string]any{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": at,
		}).Error; err != nil {
		return errors.Wrapf(err, "failed to record memory access")
	}

	return nil
}

// Close implements Store.Close
func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func recordToMemory(record *SqliteMemoryRecord) *entity.Memory {
	return &entity.Memory{
		ID:              record.ID,
		OrganizationID:  record.OrganizationID,
		UserID:          record.UserID,
		Content:         record.Content,
		MemoryType:      record.MemoryType,
		ImportanceScore: record.ImportanceScore,
		Metadata:        record.Metadata.Data(),
		CreatedAt:       record.CreatedAt,
		LastAccessedAt:  record.LastAccessedAt,
		AccessCount:     record.AccessCount,
	}
}
