package web

import "errors"

type credentialsForm struct {
	Username string
	Password string
}

func (f credentialsForm) Validate() error {
	if f.Username == "" {
		return errors.New("username is required")
	}
	if f.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type submitForm struct {
	Secret string
}

func (f submitForm) Validate() error {
	if f.Secret == "" {
		return errors.New("secret is required")
	}
	return nil
}
