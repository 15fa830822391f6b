package ports

// Identity is the authenticated caller as established by the identity
// gateway (JWT claims). It deliberately carries no role or status: those are
// always resolved server-side from the user directory so that client-supplied
// claims can never elevate access.
type Identity struct {
	Email string
	Name  string
}
