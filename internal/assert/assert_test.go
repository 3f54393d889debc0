package assert

import (
	"errors"
	"testing"
)

func TestAssertions(t *testing.T) {
	defer func() {
		r := recover()
		if Enabled && r == nil {
			t.Fatalf("expected panic in debug build")
		}
		if !Enabled && r != nil {
			t.Fatalf("unexpected panic in release build: %v", r)
		}
	}()
	IsTrue(true, "never")
	NoError(nil)
	NoError(errors.New("boom"))
}
