package database

// Store groups the repositories sharing one database handle.
type Store struct {
	*WatermarkRepository
	*ItemRepository
	*AdminRepository
}

func NewStore(db *DB) *Store {
	return &Store{
		WatermarkRepository: NewWatermarkRepository(db),
		ItemRepository:      NewItemRepository(db),
		AdminRepository:     NewAdminRepository(db),
	}
}
