package pages

// RegisterForm holds the values echoed back when registration fails.
type RegisterForm struct {
	Username  string
	Email     string
	Firstname string
	Lastname  string
	Birthdate string
}
