package cache

// Keyer builds cache keys. Every key embeds a content hash, so entries never
// need invalidation when inputs change.
type Keyer interface {
	// LayoutKey identifies a layout of the tree with the given hash under a
	// spacing configuration hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// DiagramKey identifies an exported diagram of the tree.
	DiagramKey(treeHash string, opts DiagramKeyOpts) string

	// AssessmentKey identifies a raw envelope fetched from a source.
	AssessmentKey(source, id string) string
}

// LayoutKeyOpts are the inputs besides the tree that determine a layout.
type LayoutKeyOpts struct {
	SpacingHash string `json:"spacing_hash"`
}

// DiagramKeyOpts are the inputs besides the tree that determine a diagram.
type DiagramKeyOpts struct {
	Direction string `json:"direction"`
	Styled    bool   `json:"styled"`
	Forest    bool   `json:"forest"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// DiagramKey returns "diagram:<hash>".
func (DefaultKeyer) DiagramKey(treeHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", treeHash, opts)
}

// AssessmentKey returns "assessment:<source>:<id>". Ids are validated UUIDs,
// so they are used verbatim.
func (DefaultKeyer) AssessmentKey(source, id string) string {
	return "assessment:" + source + ":" + id
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
