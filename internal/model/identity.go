package model

import "strings"

// Identity is the signed-in user.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DisplayName picks the friendliest name available from identity-token claims:
// the given name, then the first word of the full name, then the local part
// of the email.
func DisplayName(givenName, fullName, email string) string {
	if givenName != "" {
		return givenName
	}
	if fields := strings.Fields(fullName); len(fields) > 0 {
		return fields[0]
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
