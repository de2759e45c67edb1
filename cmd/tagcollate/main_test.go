package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"go.senan.xyz/tagcollate/cmd/internal/fixtures"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"tagcollate": func() int { main(); return 0 },
		"write":      func() int { fixtures.Write(); return 0 },
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/scripts",
		RequireExplicitExec: true,
	})
}
