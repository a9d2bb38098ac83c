package cache

// Keyer derives cache keys for the things huh caches.
type Keyer interface {
	// ResponseKey is the key of an ingestion response for text sent to model.
	ResponseKey(model, text string) string

	// LayoutKey is the key of a computed layout, identified by a hash of the
	// engine request.
	LayoutKey(requestHash string) string

	// RenderKey is the key of a rendered diagram, identified by a hash of its
	// DOT source and the engine that drew it.
	RenderKey(dotHash, engine string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResponseKey hashes the model and text so arbitrary input yields a short,
// filesystem-safe key.
func (DefaultKeyer) ResponseKey(model, text string) string {
	return hashKey("response", model, text)
}

// LayoutKey prefixes the request hash.
func (DefaultKeyer) LayoutKey(requestHash string) string {
	return "layout:" + requestHash
}

// RenderKey combines the DOT hash and engine.
func (DefaultKeyer) RenderKey(dotHash, engine string) string {
	return "render:" + engine + ":" + dotHash
}
