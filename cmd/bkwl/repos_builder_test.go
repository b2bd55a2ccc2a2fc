package main

import "testing"

func TestKVStoreSharedAcrossBuilders(t *testing.T) {
	root := newRootCmd()

	first, err := buildKVStore(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := buildKVStore(root)
	if err != nil {
		t.Fatal(err)
	}
	// badger holds an exclusive directory lock, so every consumer of one
	// invocation must share a single handle
	if first != second {
		t.Error("buildKVStore returned distinct stores for the same invocation")
	}
}
