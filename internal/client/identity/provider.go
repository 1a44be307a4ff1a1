package identity

import "context"

// Principal is what the identity provider reports about the signed-in user.
type Principal struct {
	UID         string
	DisplayName string
}

// Subscription delivers provider state changes. The first value is the
// state at subscription time; nil means nobody is signed in.
type Subscription interface {
	Events() <-chan *Principal
	// Release stops delivery. It is safe to call more than once.
	Release()
}

// Provider is the external identity provider.
type Provider interface {
	Subscribe(ctx context.Context) (Subscription, error)
	SignOut(ctx context.Context) error
}
