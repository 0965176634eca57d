package main

import (
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/plan-systems/klog"

	_ "github.com/2x3systems/roadgen/pyroad"
	_ "github.com/go-python/gpython/stdlib"
)

const replStartup = `
import _pyroad
from _pyroad import NewDCEL, NewCycle, BuildRecipe
print("_pyroad", _pyroad.LIB_VERSION)
`

// runScript runs the given python script with _pyroad available, or an interactive
// session if pathname is empty.
func runScript(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if len(pathname) == 0 {
		replCtx := repl.New(ctx)

		_, err = py.RunSrc(ctx, replStartup, "<startup>", replCtx.Module)
		if err == nil {
			cli.RunREPL(replCtx)
		}

	} else {
		startTime := time.Now()
		klog.Infof("executing %q", pathname)

		_, err = py.RunFile(ctx, pathname, py.CompileOpts{}, nil)
		if err == nil {
			klog.Infof("%q complete: %v", pathname, time.Since(startTime))
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
