package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/veldt/proxygen/internal/proxy"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		var revision string
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
				break
			}
		}
		if len(revision) >= 12 { // short hash for readability
			return revision[:12]
		}
		if revision != "" {
			return revision
		}
	}
	return "devel"
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var typeName string
	var output string
	var dir string
	var proxyTarget bool
	var hotswap bool
	var lazy bool
	var cacheLazyTarget bool
	var interfacesCSV string
	var bindingsCSV string
	flag.StringVar(&typeName, "type", "", "Name of the struct or interface type to proxy (required)")
	flag.StringVar(&output, "output", "", "Output filename for generated code (default <type>_proxy_gen.go)")
	flag.StringVar(&dir, "dir", ".", "Directory to scan for the type definition (relative to current directory)")
	flag.BoolVar(&proxyTarget, "proxy-target", false, "Dispatch to a separate target bean resolved from the context instead of the proxy itself")
	flag.BoolVar(&hotswap, "hotswap", false, "Guard the resolved target so it can be swapped at runtime (implies -proxy-target)")
	flag.BoolVar(&lazy, "lazy", false, "Resolve the target on first access instead of at construction (implies -proxy-target)")
	flag.BoolVar(&cacheLazyTarget, "cache-lazy-target", false, "Cache the lazily resolved target after first access (implies -lazy)")
	flag.StringVar(&interfacesCSV, "interfaces", "", "Comma-separated list of additional interface names the proxy must satisfy")
	flag.StringVar(&bindingsCSV, "binding", "", "Comma-separated list of interceptor-binding names restricting which interceptors apply")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nProxygen generates intercepting proxy types for structs and interfaces.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nBinding names can also be attached to the type declaration with a\n")
		fmt.Fprintf(os.Stderr, "//proxygen:binding directive comment; directive and flag names combine.\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -type=Greeter -proxy-target -hotswap\n", os.Args[0])
	}
	flag.Parse()

	if typeName == "" {
		fmt.Fprintf(os.Stderr, "Error: -type is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if hotswap || lazy {
		proxyTarget = true
	}
	if cacheLazyTarget {
		proxyTarget = true
		lazy = true
	}
	interfaces := splitCSV(interfacesCSV)
	bindings := splitCSV(bindingsCSV)

	// build a simplified canonical command representation instead of raw argv (which may include build cache paths)
	cmdParts := []string{"proxygen", "-type=" + typeName}
	if output != "" {
		cmdParts = append(cmdParts, "-output="+output)
	}
	if dir != "." {
		cmdParts = append(cmdParts, "-dir="+dir)
	}
	if proxyTarget {
		cmdParts = append(cmdParts, "-proxy-target")
	}
	if hotswap {
		cmdParts = append(cmdParts, "-hotswap")
	}
	if lazy {
		cmdParts = append(cmdParts, "-lazy")
	}
	if cacheLazyTarget {
		cmdParts = append(cmdParts, "-cache-lazy-target")
	}
	if len(interfaces) > 0 {
		cmdParts = append(cmdParts, "-interfaces="+strings.Join(interfaces, ","))
	}
	if len(bindings) > 0 {
		cmdParts = append(cmdParts, "-binding="+strings.Join(bindings, ","))
	}
	displayCmd := strings.Join(cmdParts, " ")
	buildVersion := deriveVersion()
	cfg := proxy.Config{
		Dir:             dir,
		Type:            typeName,
		Output:          output,
		ProxyTarget:     proxyTarget,
		HotSwap:         hotswap,
		Lazy:            lazy,
		CacheLazyTarget: cacheLazyTarget,
		Interfaces:      interfaces,
		Bindings:        bindings,
		Command:         displayCmd,
		Version:         buildVersion,
	}
	if err := proxy.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "proxygen: %v\n", err)
		os.Exit(1)
	}
}
