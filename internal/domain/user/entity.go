package user

// User represents a ShareIt account (matches users table)
type User struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}
