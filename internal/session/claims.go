package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the user fields the backend puts in its tokens. The signature
// is never checked here; the backend is the only verifier.
type Claims struct {
	ID       int64
	Subject  string
	Name     string
	Email    string
	Role     string
	Login    string
	Username string
}

func (c Claims) user() User {
	return User{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
		Login: firstNonEmpty(c.Login, c.Username, c.Subject),
	}
}

// DecodeClaims reads the payload of a JWT without verifying it. Malformed
// tokens yield ok == false.
func DecodeClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}

	c := Claims{
		Name:     stringClaim(mc, "name"),
		Email:    stringClaim(mc, "email"),
		Role:     stringClaim(mc, "role"),
		Login:    stringClaim(mc, "login"),
		Username: stringClaim(mc, "username"),
	}
	c.Subject, _ = mc.GetSubject()
	if id, ok := mc["id"].(float64); ok {
		c.ID = int64(id)
	}
	return c, true
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
