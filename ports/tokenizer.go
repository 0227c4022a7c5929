package ports

import "github.com/chaitanyaghughuskar/cdac-project/core"

// Identity is the authenticated portal user attached to a request.
type Identity struct {
	UserID string
	Role   core.Role
}

// Tokenizer converts between identities and portal access tokens.
type Tokenizer interface {
	IdentityToToken(identity Identity) (string, error)
	TokenToIdentity(token string) (Identity, error)
}
