package entity

// User is the only record the service manages. ID is assigned by the
// repository and ignored on create.
type User struct {
	ID    int    `json:"Id"`
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Age   int    `json:"Age"`
}
