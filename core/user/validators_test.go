package user_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/user"
)

func newValidator() (*validator.Validate, func(error) map[string]string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	translate := func(err error) map[string]string {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		res := make(map[string]string, len(vErrs))
		for _, e := range vErrs {
			res[e.Field()] = e.Translate(translator)
		}
		return res
	}
	return validate, translate
}

func TestNewUser_Validate(t *testing.T) {
	validate, translate := newValidator()
	valid := func() user.NewUser {
		return user.NewUser{Name: "Ada Lovelace", Email: "Ada@Example.com ", Password: "correct-horse-42", Role: "Student"}
	}

	tests := []struct {
		name    string
		mutate  func(nu *user.NewUser)
		wantErr map[string]string
	}{
		{name: "valid", mutate: func(*user.NewUser) {}},
		{name: "missing name", mutate: func(nu *user.NewUser) { nu.Name = "  " }, wantErr: map[string]string{"name": "this field is required"}},
		{name: "bad email", mutate: func(nu *user.NewUser) { nu.Email = "nope" }, wantErr: map[string]string{"email": "email must be a valid email address"}},
		{name: "unknown role", mutate: func(nu *user.NewUser) { nu.Role = "root" }, wantErr: map[string]string{"role": "role must be one of: admin, instructor, student"}},
		{name: "short password", mutate: func(nu *user.NewUser) { nu.Password = "abc12" }, wantErr: map[string]string{"password": "password must contain at least 8 characters"}},
		{name: "password with space", mutate: func(nu *user.NewUser) { nu.Password = "correct horse 42" }, wantErr: map[string]string{"password": "password must not contain whitespace"}},
		{name: "numeric password", mutate: func(nu *user.NewUser) { nu.Password = "1234567890" }, wantErr: map[string]string{"password": "password cannot be entirely numeric"}},
		{name: "password like name", mutate: func(nu *user.NewUser) { nu.Password = "ada.lovelace" }, wantErr: map[string]string{"password": "password cannot be similar to user attributes"}},
		{
			name: "password like email", mutate: func(nu *user.NewUser) { nu.Email = "byron1815@example.com"; nu.Password = "byron-1815" },
			wantErr: map[string]string{"password": "password cannot be similar to user attributes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)
			err := nu.Validate(validate)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "ada@example.com", nu.Email)
				assert.Equal(t, user.RoleStudent, nu.Role)
				return
			}
			assert.Equal(t, tt.wantErr, translate(err))
		})
	}
}
