package web

import "testing"

func Test_credentialsForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    credentialsForm
		wantErr bool
	}{
		{
			name:    "ok",
			form:    credentialsForm{Username: "alice", Password: "pw123"},
			wantErr: false,
		},
		{
			name:    "missing username",
			form:    credentialsForm{Password: "pw123"},
			wantErr: true,
		},
		{
			name:    "missing password",
			form:    credentialsForm{Username: "alice"},
			wantErr: true,
		},
		{
			name:    "missing both",
			form:    credentialsForm{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.form.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_submitForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    submitForm
		wantErr bool
	}{
		{
			name:    "ok",
			form:    submitForm{Secret: "hello"},
			wantErr: false,
		},
		{
			name:    "empty",
			form:    submitForm{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.form.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
