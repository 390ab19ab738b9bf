package cart

import (
	"fmt"
	"sync"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store is the durable per-device key-value contract the cart persists
// through. Get reports presence; Set and Remove may fail, and callers
// are expected to swallow those failures.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStore is an in-process Store for tests and for degraded
// operation when the database cannot be opened.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// cartRecord is the persisted row for one device's cart.
type cartRecord struct {
	gorm.Model
	DeviceKey string `gorm:"unique_index"`
	Payload   string `gorm:"type:text"`
}

// SQLiteStore is a Store backed by a SQLite cart_records table.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if needed) the cart database at the
// given path and migrates the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database: %w", err)
	}
	if err := db.AutoMigrate(&cartRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cart database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool) {
	var rec cartRecord
	if err := s.db.Where("device_key = ?", key).First(&rec).Error; err != nil {
		return "", false
	}
	return rec.Payload, true
}

func (s *SQLiteStore) Set(key, value string) error {
	var rec cartRecord
	err := s.db.Where(cartRecord{DeviceKey: key}).
		Assign(cartRecord{Payload: value}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save cart state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	err := s.db.Where("device_key = ?", key).Delete(&cartRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart state: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
