package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const instructorHeader = "X-Instructor-Password"

// Instructor decides whether a request carries the shared instructor password.
type Instructor struct {
	password string
}

// NewInstructor returns a checker for password. An empty password disables
// every privileged operation.
func NewInstructor(password string) Instructor {
	return Instructor{password: password}
}

// Enabled reports whether privileged operations can ever be authorized.
func (i Instructor) Enabled() bool {
	return i.password != ""
}

// Authorized compares the header or form password in constant time.
func (i Instructor) Authorized(r *http.Request) bool {
	if !i.Enabled() {
		return false
	}
	given := strings.TrimSpace(r.Header.Get(instructorHeader))
	if given == "" {
		given = r.PostFormValue("password")
	}
	if given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(i.password)) == 1
}
