package repositories

// Repositories holds all the repository instances
type Repositories struct {
	Store             *RecordStore
	AdminRepository   *AdminRepository
	StudentRepository *StudentRepository
}

// NewRepositories initializes all repositories over one record store
func NewRepositories(store *RecordStore) *Repositories {
	return &Repositories{
		Store:             store,
		AdminRepository:   NewAdminRepository(store),
		StudentRepository: NewStudentRepository(store),
	}
}
