package validation

// Registration failures name the exact constraint so the user can
// self-correct. Login failures deliberately collapse format constraints to a
// generic message so the endpoint cannot be used to probe account policy.
const invalidCredentials = "Invalid credentials"

// Registry returns the per-context rule sets, constructed once at startup.
func Registry() map[Context]RuleSet {
	return map[Context]RuleSet{
		ContextRegister: {
			{Field: "username", Message: "Username is required", Check: required},
			{Field: "username", Message: "Username must contain only letters and numbers", Check: alphanumeric},
			{Field: "username", Message: "No excessively long inputs allowed", Check: maxLen(255)},
			{Field: "email", Message: "Invalid email format", Check: email},
			{Field: "password", Message: "Password is required", Check: required},
			{Field: "password", Message: "Password must be at least 8 characters long", Check: minLen(8)},
			{Field: "password", Message: "Password must contain at least one uppercase letter", Check: hasUpper},
			{Field: "password", Message: "Password must contain at least one number", Check: hasDigit},
		},
		ContextLogin: {
			{Field: "username", Message: "Username is required", Check: required},
			{Field: "username", Message: invalidCredentials, Check: alphanumeric},
			{Field: "username", Message: invalidCredentials, Check: maxLen(255)},
			{Field: "password", Message: "Password is required", Check: required},
			{Field: "password", Message: invalidCredentials, Check: minLen(8)},
			{Field: "password", Message: invalidCredentials, Check: hasUpper},
			{Field: "password", Message: invalidCredentials, Check: hasDigit},
		},
		ContextEdit: {
			{Field: "username", Message: "Username must contain only letters and numbers", Check: alphanumeric, Optional: true},
			{Field: "username", Message: "No excessively long inputs allowed", Check: maxLen(255), Optional: true},
			{Field: "email", Message: "Invalid email format", Check: email, Optional: true},
			{Field: "password", Message: "Password must be at least 8 characters long", Check: minLen(8), Optional: true},
			{Field: "password", Message: "Password must contain at least one uppercase letter", Check: hasUpper, Optional: true},
			{Field: "password", Message: "Password must contain at least one number", Check: hasDigit, Optional: true},
		},
	}
}
