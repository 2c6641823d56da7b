package webpath

const (
	Home     = "/"
	Login    = "/login"
	Register = "/register"
	Secrets  = "/secrets"
	Submit   = "/submit"
	Logout   = "/logout"

	AuthGoogle         = "/auth/google"
	AuthGoogleCallback = "/auth/google/secrets"
)

func Path() map[string]string {
	return map[string]string{
		"Home":       Home,
		"Login":      Login,
		"Register":   Register,
		"Secrets":    Secrets,
		"Submit":     Submit,
		"Logout":     Logout,
		"AuthGoogle": AuthGoogle,
	}
}
