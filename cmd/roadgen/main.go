package main

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"

	"github.com/2x3systems/roadgen/libroad/dcel"
	"github.com/2x3systems/roadgen/libroad/recipe"
	"github.com/2x3systems/roadgen/libroad/store"
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var (
	configPath = flag.String("config", "", "YAML config file (see roadgen.Config)")
	recipePath = flag.String("recipe", "", "growth recipe to run")
	loadName   = flag.String("load", "", "stored snapshot to start from")
	saveName   = flag.String("save", "", "name to store the result under")
	dump       = flag.Bool("dump", false, "write the result to stdout")
	watch      = flag.Bool("watch", false, "run the recipe again whenever it changes")
)

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")

	flag.Parse()

	cfg, err := roadgen.LoadConfig(*configPath)
	if err == nil {
		fset.Set("v", strconv.Itoa(cfg.Log.Verbosity))
		klog.SetFormatter(&klog.FmtConstWidth{
			FileNameCharWidth: 16,
			UseColor:          cfg.Log.Color,
		})

		pathname := flag.Arg(0)
		switch {
		case *watch:
			err = watchRecipe(&cfg, nil, nil)
		case filepath.Ext(pathname) == ".py" || (len(*recipePath) == 0 && len(*loadName) == 0):
			err = runScript(pathname)
		default:
			err = run(&cfg)
		}
	}

	if err != nil {
		klog.Error(err)
	}
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *roadgen.Config) error {
	var st *store.Store
	if len(*loadName) > 0 || len(*saveName) > 0 {
		var err error
		st, err = store.Open(store.Opts{
			Path:     cfg.Store.Path,
			ReadOnly: cfg.Store.ReadOnly,
		})
		if err != nil {
			return err
		}
		defer st.Close()
	}

	var d *dcel.DCEL
	label := ""

	if len(*loadName) > 0 {
		var err error
		if d, err = st.Get(*loadName); err != nil {
			return err
		}
		label = *loadName
	}

	if len(*recipePath) > 0 {
		rcp, err := recipe.ParseFile(*recipePath)
		if err != nil {
			return err
		}
		if d == nil {
			d, err = rcp.Build()
		} else {
			err = rcp.ApplyTo(d)
		}
		if err != nil {
			return err
		}
		label = filepath.Base(*recipePath)
	}

	if err := d.Validate(); err != nil {
		return errors.Wrapf(err, "validating %q", label)
	}
	klog.Infof("%s: %d nodes, %d half-edges, %d faces", label, d.CountNodes(), d.CountHalfEdges(), d.CountFaces())

	if *dump {
		opts := cfg.PrintOpts()
		opts.Label = label
		d.WriteAsString(os.Stdout, opts)
	}
	d.PrintToLog()

	if len(*saveName) > 0 {
		if err := st.Put(*saveName, d); err != nil {
			return err
		}
	}
	return nil
}
