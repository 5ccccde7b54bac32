package autodiff

// SetParentForTest rewires one parent slot of child. Graph operations can
// never produce a cycle, so tests use this to build one.
func SetParentForTest(child Value, slot int, parent Value) {
	child.node().parents[slot] = parent.id
}
