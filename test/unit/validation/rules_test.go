package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyfold/user-gatekeeper/internal/validation"
)

func validate(ctx validation.Context, body map[string]any) []string {
	details := validation.Registry()[ctx].Validate(body)
	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func TestRegister_AllFieldsValid(t *testing.T) {
	msgs := validate(validation.ContextRegister, map[string]any{
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "Password1",
	})
	require.Empty(t, msgs)
}

func TestRegister_MissingEverything(t *testing.T) {
	msgs := validate(validation.ContextRegister, map[string]any{})
	require.Contains(t, msgs, "Username is required")
	require.Contains(t, msgs, "Invalid email format")
	require.Contains(t, msgs, "Password is required")
}

func TestRegister_UsernameConstraints(t *testing.T) {
	msgs := validate(validation.ContextRegister, map[string]any{
		"username": "not valid!",
		"email":    "alice@example.com",
		"password": "Password1",
	})
	require.Equal(t, []string{"Username must contain only letters and numbers"}, msgs)

	long := strings.Repeat("a", 256)
	msgs = validate(validation.ContextRegister, map[string]any{
		"username": long,
		"email":    "alice@example.com",
		"password": "Password1",
	})
	require.Equal(t, []string{"No excessively long inputs allowed"}, msgs)
}

func TestRegister_PasswordConstraintsReportedInOrder(t *testing.T) {
	msgs := validate(validation.ContextRegister, map[string]any{
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "weak",
	})
	require.Equal(t, []string{
		"Password must be at least 8 characters long",
		"Password must contain at least one uppercase letter",
		"Password must contain at least one number",
	}, msgs)
}

func TestRegister_NonStringFieldFails(t *testing.T) {
	msgs := validate(validation.ContextRegister, map[string]any{
		"username": 42,
		"email":    "alice@example.com",
		"password": "Password1",
	})
	// A non-string value never satisfies a string constraint.
	require.NotEmpty(t, msgs)
}

func TestLogin_FormatFailuresCollapseToGenericMessage(t *testing.T) {
	msgs := validate(validation.ContextLogin, map[string]any{
		"username": "alice!",
		"password": "weak",
	})
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		require.Equal(t, "Invalid credentials", m)
	}
}

func TestLogin_RequiredMessagesStaySpecific(t *testing.T) {
	msgs := validate(validation.ContextLogin, map[string]any{})
	require.Contains(t, msgs, "Username is required")
	require.Contains(t, msgs, "Password is required")
}

func TestEdit_AbsentFieldsSkipped(t *testing.T) {
	require.Empty(t, validate(validation.ContextEdit, map[string]any{"id": float64(1)}))
}

func TestEdit_PresentFieldsValidated(t *testing.T) {
	msgs := validate(validation.ContextEdit, map[string]any{
		"email": "not-an-email",
	})
	require.Equal(t, []string{"Invalid email format"}, msgs)
}
