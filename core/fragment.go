package core

// Fragment is a renderable node delivered to the display layer. Concrete
// fragment types live in the fragments package; this interface only tags them
// with a stable kind string used by the wire encoder.
type Fragment interface {
	Kind() string
}
