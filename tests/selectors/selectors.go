package sel

const (
	Brand = "nav .brand"

	RegisterFormUsername = "#username-field"
	RegisterFormPass     = "#password-field"
	RegisterFormSubmit   = "#register-form-submit"

	LoginFormUsername = "#username-field"
	LoginFormPass     = "#password-field"
	LoginFormSubmit   = "#login-form-submit"

	SecretField      = "#secret-field"
	SecretFormSubmit = "#submit-form-submit"

	SecretItem = ".secret"
)
