package proxy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/veldt/proxygen/internal/model"
)

// Config is one generation request: which declaration to proxy, where its
// package lives, how the target is held, and what to write.
type Config struct {
	Dir    string
	Type   string
	Output string

	ProxyTarget     bool
	HotSwap         bool
	Lazy            bool
	CacheLazyTarget bool

	// Interfaces are additional interface names the generated proxy must
	// satisfy; used by introduction proxies over otherwise plain targets.
	Interfaces []string

	// Bindings are interceptor-binding names restricting which registered
	// interceptors apply.
	Bindings []string

	Command string
	Version string
}

// Run orchestrates loading, modeling, visitation, and file emission for one
// proxy. The output file is written in a single step; a failed run leaves
// no partial artifact.
func Run(cfg Config) error {
	if cfg.Type == "" {
		return errors.New("no type provided")
	}
	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return err
	}
	pkgs, err := model.LoadDir(absDir)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages found in %s", absDir)
	}
	pkg := pkgs[0]

	class, err := model.ClassFor(pkg, cfg.Type)
	if err != nil {
		return err
	}

	spec := Spec{
		PackagePath:          class.PackagePath,
		PackageName:          class.PackageName,
		Name:                 class.Name,
		IsInterface:          class.IsInterface,
		AdditionalInterfaces: cfg.Interfaces,
		Imports:              class.Imports,
		ProxyTarget:          cfg.ProxyTarget,
		HotSwap:              cfg.HotSwap,
		Lazy:                 cfg.Lazy,
		CacheLazyTarget:      cfg.CacheLazyTarget,
	}

	bindings := make([]Binding, 0, len(cfg.Bindings)+len(class.Bindings))
	for _, name := range cfg.Bindings {
		bindings = append(bindings, Binding{Name: name})
	}
	for _, name := range class.Bindings {
		bindings = append(bindings, Binding{Name: name})
	}

	// An interface with no separate target bean is satisfied by
	// introduction advice; everything else is around advice.
	introduction := class.IsInterface && !cfg.ProxyTarget

	var w *Writer
	if introduction {
		w, err = NewIntroductionWriter(spec, model.EmbeddingOracle{}, bindings...)
		if err != nil {
			return err
		}
	} else {
		w = NewWriter(nil, spec, model.EmbeddingOracle{}, bindings...)
	}
	w.SetProvenance(cfg.Command, cfg.Version)

	if class.Constructor != nil {
		if err := w.VisitConstructor(class.Constructor); err != nil {
			return err
		}
	} else {
		if err := w.VisitDefaultConstructor(); err != nil {
			return err
		}
	}

	for _, m := range class.Methods {
		if introduction {
			err = w.VisitIntroductionMethod(class, m)
		} else {
			err = w.VisitAroundMethod(class, m)
		}
		if err != nil {
			return err
		}
	}

	if err := w.Finalize(); err != nil {
		return err
	}

	output := cfg.Output
	if output == "" {
		output = strings.ToLower(class.Name) + "_proxy_gen.go"
	}
	outPath := filepath.Join(absDir, output)
	if err := w.WriteTo(outPath); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"type":     class.QualifiedName(),
		"proxy":    w.ProxyName(),
		"strategy": w.strategy.String(),
		"methods":  w.ProxyMethodCount(),
		"output":   outPath,
	}).Info("proxy generated")
	return nil
}
