package validators

import (
	"testing"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Register(t *testing.T) {
	v := NewValidator()

	valid := models.RegisterRequest{Name: "Alice", Email: "alice@example.com", Phone: "+84912345678", Password: "Str0ng!pass"}
	require.NoError(t, v.Validate(valid))

	tests := []struct {
		name  string
		mut   func(r *models.RegisterRequest)
		field string
	}{
		{name: "missing name", mut: func(r *models.RegisterRequest) { r.Name = "" }, field: "name"},
		{name: "bad email", mut: func(r *models.RegisterRequest) { r.Email = "nope" }, field: "email"},
		{name: "bad phone", mut: func(r *models.RegisterRequest) { r.Phone = "12345" }, field: "phone"},
		{name: "weak password", mut: func(r *models.RegisterRequest) { r.Password = "password1" }, field: "password"},
		{name: "short password", mut: func(r *models.RegisterRequest) { r.Password = "S0!a" }, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestValidate_OptionalPhone(t *testing.T) {
	v := NewValidator()
	req := models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "Str0ng!pass"}
	assert.NoError(t, v.Validate(req))
}

func TestValidate_PhoneFormats(t *testing.T) {
	v := NewValidator()
	for phone, ok := range map[string]bool{
		"0912345678":   true,
		"09123456789":  true,
		"+84912345678": true,
		"+1912345678":  false,
		"091234567":    false,
		"091234567890": false,
		"09123abc78":   false,
	} {
		req := models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Phone: phone, Password: "Str0ng!pass"}
		err := v.Validate(req)
		if ok {
			assert.NoError(t, err, phone)
		} else {
			assert.Error(t, err, phone)
		}
	}
}

func TestValidate_ChangePasswordMustDiffer(t *testing.T) {
	v := NewValidator()
	err := v.Validate(models.ChangePasswordRequest{CurrentPassword: "Str0ng!pass", NewPassword: "Str0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, "new_password", err.(*apperrors.Error).Field)
}
