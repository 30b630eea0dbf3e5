package config

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageBackend selects where session records live: "memory" or "sqlite".
func (Storage) GetStorageBackend() string {
	return GetEnv("STORAGE", StorageMemory)
}

func (Storage) GetSQLitePath() string {
	return GetEnv("SQLITE_PATH", "./data/sessions.db")
}
