package service

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID  int64
	Email   string
	IsAdmin bool
}
